package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/metrics"
	"github.com/causewayhq/causeway/internal/store"
)

type membershipCreateRequest struct {
	DonorID   string `json:"donor_id"`
	Tier      string `json:"tier"`
	AutoRenew bool   `json:"auto_renew,omitempty"`
}

// membershipUpdateRequest is a partial update; nil fields are left untouched.
// Status moves only through the renew and cancel endpoints.
type membershipUpdateRequest struct {
	Tier      *string `json:"tier,omitempty"`
	AutoRenew *bool   `json:"auto_renew,omitempty"`
}

func (s *Server) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.MembershipFilter{
		DonorID: q.Get("donor_id"),
		Status:  domain.MembershipStatus(q.Get("status")),
		Tier:    domain.MembershipTier(q.Get("tier")),
	}
	if f.Status != "" && !f.Status.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status filter")
		return
	}
	if f.Tier != "" && !f.Tier.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown tier filter")
		return
	}

	limit, offset := pageParams(r)
	memberships, total, err := s.store.ListMemberships(r.Context(), f, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Membership]{
		Items: memberships, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateMembership(w http.ResponseWriter, r *http.Request) {
	var req membershipCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	m := &domain.Membership{
		ID:        domain.NewID(),
		DonorID:   req.DonorID,
		Tier:      domain.MembershipTier(req.Tier),
		Status:    domain.MembershipActive,
		AutoRenew: req.AutoRenew,
		StartedAt: now,
		ExpiresAt: now.Add(domain.MembershipPeriod),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}

	if err := s.store.CreateMembership(r.Context(), m); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "membership.created").
		Str(log.FieldMembershipID, m.ID).
		Str(log.FieldDonorID, m.DonorID).
		Str("tier", string(m.Tier)).
		Msg("membership created")

	writeJSON(w, r, http.StatusCreated, m)
}

func (s *Server) handleGetMembership(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMembershipByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m)
}

func (s *Server) handleUpdateMembership(w http.ResponseWriter, r *http.Request) {
	var req membershipUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := s.store.GetMembershipByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if req.Tier != nil {
		tier := domain.MembershipTier(*req.Tier)
		if !tier.IsValid() {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown tier")
			return
		}
		m.Tier = tier
	}
	if req.AutoRenew != nil {
		m.AutoRenew = *req.AutoRenew
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateMembership(r.Context(), m); err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m)
}

func (s *Server) handleRenewMembership(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.RenewMembership(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.IncMembershipRenewed(string(m.Tier))
	s.invalidateStats(r.Context())
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "membership.renewed").
		Str(log.FieldMembershipID, m.ID).
		Time("expires_at", m.ExpiresAt).
		Msg("membership renewed")

	writeJSON(w, r, http.StatusOK, m)
}

func (s *Server) handleCancelMembership(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.CancelMembership(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "membership.cancelled").
		Str(log.FieldMembershipID, m.ID).
		Msg("membership cancelled")

	writeJSON(w, r, http.StatusOK, m)
}
