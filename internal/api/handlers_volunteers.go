package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
)

type volunteerRequest struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone,omitempty"`
	Skills []string `json:"skills,omitempty"`
}

func (s *Server) handleListVolunteers(w http.ResponseWriter, r *http.Request) {
	status := domain.VolunteerStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status filter")
		return
	}

	limit, offset := pageParams(r)
	volunteers, total, err := s.store.ListVolunteers(r.Context(), status, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Volunteer]{
		Items: volunteers, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateVolunteer(w http.ResponseWriter, r *http.Request) {
	var req volunteerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	v := &domain.Volunteer{
		ID:        domain.NewID(),
		Email:     domain.NormalizeEmail(req.Email),
		Name:      strings.TrimSpace(req.Name),
		Phone:     req.Phone,
		Skills:    req.Skills,
		Status:    domain.VolunteerPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := v.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}

	if err := s.store.CreateVolunteer(r.Context(), v); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	writeJSON(w, r, http.StatusCreated, v)
}

func (s *Server) handleGetVolunteer(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.GetVolunteerByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleUpdateVolunteer(w http.ResponseWriter, r *http.Request) {
	var req volunteerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := s.store.GetVolunteerByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	v.Email = domain.NormalizeEmail(req.Email)
	v.Name = strings.TrimSpace(req.Name)
	v.Phone = req.Phone
	v.Skills = req.Skills
	v.UpdatedAt = time.Now().UTC()

	if err := v.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}
	if err := s.store.UpdateVolunteer(r.Context(), v); err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *Server) handleDeleteVolunteer(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteVolunteer(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.invalidateStats(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVolunteerStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next := domain.VolunteerStatus(req.Status)
	if !next.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status")
		return
	}

	v, err := s.store.UpdateVolunteerStatus(r.Context(), chi.URLParam(r, "id"), next)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	log.WithComponentFromContext(r.Context(), "api").Info().
		Str("event", "volunteer.status_changed").
		Str(log.FieldVolunteerID, v.ID).
		Str(log.FieldNewState, string(next)).
		Msg("volunteer status changed")

	writeJSON(w, r, http.StatusOK, v)
}
