package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/metrics"
	"github.com/causewayhq/causeway/internal/store"
)

type eventRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	Capacity    int    `json:"capacity,omitempty"`
	PriceCents  int64  `json:"price_cents,omitempty"`
	CampaignID  string `json:"campaign_id,omitempty"`
	Status      string `json:"status,omitempty"`
}

type ticketRequest struct {
	HolderName  string `json:"holder_name"`
	HolderEmail string `json:"holder_email,omitempty"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	status := domain.EventStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status filter")
		return
	}

	limit, offset := pageParams(r)
	events, total, err := s.store.ListEvents(r.Context(), status, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Event]{
		Items: events, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	starts, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "starts_at must be RFC 3339")
		return
	}
	ends, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "ends_at must be RFC 3339")
		return
	}

	now := time.Now().UTC()
	e := &domain.Event{
		ID:          domain.NewID(),
		Title:       strings.TrimSpace(req.Title),
		Slug:        req.Slug,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    starts.UTC(),
		EndsAt:      ends.UTC(),
		Capacity:    req.Capacity,
		PriceCents:  req.PriceCents,
		Status:      domain.EventScheduled,
		CampaignID:  req.CampaignID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}

	if err := s.store.CreateEvent(r.Context(), e); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "event.created").
		Str(log.FieldEventID, e.ID).
		Str(log.FieldSlug, e.Slug).
		Msg("event created")

	writeJSON(w, r, http.StatusCreated, e)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetEventByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

// handleUpdateEvent replaces the mutable fields of an event. Status rides
// along on the same PUT; moves are checked against the lifecycle.
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := s.store.GetEventByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	starts := e.StartsAt
	if req.StartsAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "starts_at must be RFC 3339")
			return
		}
		starts = parsed.UTC()
	}
	ends := e.EndsAt
	if req.EndsAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "ends_at must be RFC 3339")
			return
		}
		ends = parsed.UTC()
	}

	if req.Status != "" {
		next := domain.EventStatus(req.Status)
		if !next.IsValid() {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status")
			return
		}
		if next != e.Status {
			if !e.Status.CanTransition(next) {
				RespondError(w, r, http.StatusConflict, ErrConflict,
					fmt.Sprintf("event cannot move from %s to %s", e.Status, next))
				return
			}
			e.Status = next
		}
	}

	e.Title = strings.TrimSpace(req.Title)
	e.Description = req.Description
	e.Location = req.Location
	e.StartsAt = starts
	e.EndsAt = ends
	e.Capacity = req.Capacity
	e.PriceCents = req.PriceCents
	e.CampaignID = req.CampaignID
	e.UpdatedAt = time.Now().UTC()

	if err := e.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}
	if err := s.store.UpdateEvent(r.Context(), e); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	writeJSON(w, r, http.StatusOK, e)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.invalidateStats(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	// A missing event is 404, not an empty page.
	if _, err := s.store.GetEventByID(r.Context(), eventID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	limit, offset := pageParams(r)
	tickets, total, err := s.store.ListTickets(r.Context(), eventID, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Ticket]{
		Items: tickets, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleIssueTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	holder := strings.TrimSpace(req.HolderName)
	if holder == "" {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "holder_name is required")
		return
	}

	eventID := chi.URLParam(r, "id")
	now := time.Now().UTC()

	// Codes are random; on the rare per-event collision we draw again
	// instead of bouncing the caller.
	var t *domain.Ticket
	for attempt := 0; ; attempt++ {
		code, err := domain.NewTicketCode()
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		t = &domain.Ticket{
			ID:          domain.NewID(),
			EventID:     eventID,
			Code:        code,
			HolderName:  holder,
			HolderEmail: domain.NormalizeEmail(req.HolderEmail),
			Status:      domain.TicketIssued,
			IssuedAt:    now,
		}
		err = s.store.IssueTicket(r.Context(), t)
		if err == nil {
			break
		}
		if attempt < 2 && errors.Is(err, store.ErrConflict) && strings.Contains(err.Error(), "code collision") {
			continue
		}
		respondStoreError(w, r, err)
		return
	}

	metrics.IncTicketIssued()
	s.invalidateStats(r.Context())
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "ticket.issued").
		Str(log.FieldEventID, eventID).
		Str("code", t.Code).
		Msg("ticket issued")

	writeJSON(w, r, http.StatusCreated, t)
}

func (s *Server) handleCheckInTicket(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))

	t, err := s.store.CheckInTicket(r.Context(), eventID, code)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.IncTicketCheckedIn()
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "ticket.checked_in").
		Str(log.FieldEventID, eventID).
		Str("code", code).
		Msg("ticket checked in")

	writeJSON(w, r, http.StatusOK, t)
}
