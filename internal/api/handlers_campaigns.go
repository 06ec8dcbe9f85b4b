package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/cache"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/metrics"
)

type campaignRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	GoalCents   int64  `json:"goal_cents,omitempty"`
	StartsAt    string `json:"starts_at,omitempty"` // RFC 3339; empty = now
	EndsAt      string `json:"ends_at,omitempty"`   // RFC 3339; empty = open-ended
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	status := domain.CampaignStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status filter")
		return
	}

	limit, offset := pageParams(r)
	campaigns, total, err := s.store.ListCampaigns(r.Context(), status, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Campaign]{
		Items: campaigns, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	startsAt, endsAt, ok := campaignWindow(w, r, req, now)
	if !ok {
		return
	}

	c := &domain.Campaign{
		ID:          domain.NewID(),
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		GoalCents:   req.GoalCents,
		Status:      domain.CampaignDraft,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}

	if err := s.store.CreateCampaign(r.Context(), c); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "campaign.created").
		Str(log.FieldCampaignID, c.ID).
		Str(log.FieldSlug, c.Slug).
		Msg("campaign created")

	writeJSON(w, r, http.StatusCreated, c)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCampaignByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := s.store.GetCampaignByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	now := time.Now().UTC()
	startsAt, endsAt, ok := campaignWindow(w, r, req, c.StartsAt)
	if !ok {
		return
	}

	c.Title = req.Title
	if req.Slug != "" {
		c.Slug = req.Slug
	}
	c.Description = req.Description
	c.GoalCents = req.GoalCents
	c.StartsAt = startsAt
	c.EndsAt = endsAt
	c.UpdatedAt = now

	if err := c.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}
	if err := s.store.UpdateCampaign(r.Context(), c); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCampaign(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.invalidateStats(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCampaignStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next := domain.CampaignStatus(req.Status)
	if !next.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status")
		return
	}

	c, err := s.store.UpdateCampaignStatus(r.Context(), chi.URLParam(r, "id"), next)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if next == domain.CampaignCompleted {
		metrics.IncCampaignCompleted()
	}
	s.invalidateStats(r.Context())

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "campaign.status_changed").
		Str(log.FieldCampaignID, c.ID).
		Str(log.FieldNewState, string(next)).
		Msg("campaign status changed")

	writeJSON(w, r, http.StatusOK, c)
}

// handleCampaignStats serves per-campaign aggregates through the cache.
// Cached bytes are replayed verbatim so cache hits skip the aggregation
// queries entirely.
func (s *Server) handleCampaignStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	key := cache.CampaignStatsKey(id)

	if body, ok := s.cache.Get(ctx, key); ok {
		serveCachedJSON(w, body)
		return
	}

	stats, err := s.store.GetCampaignStats(ctx, id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if body, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, key, body, s.cacheTTL)
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// campaignWindow parses the optional start and end times. A zero start
// falls back to the given default; errors are written as problems.
func campaignWindow(w http.ResponseWriter, r *http.Request, req campaignRequest, defaultStart time.Time) (time.Time, *time.Time, bool) {
	startsAt := defaultStart
	if req.StartsAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "starts_at must be RFC 3339")
			return time.Time{}, nil, false
		}
		startsAt = parsed.UTC()
	}

	var endsAt *time.Time
	if req.EndsAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "ends_at must be RFC 3339")
			return time.Time{}, nil, false
		}
		utc := parsed.UTC()
		endsAt = &utc
	}
	return startsAt, endsAt, true
}
