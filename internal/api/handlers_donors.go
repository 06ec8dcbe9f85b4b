package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/store"
)

type donorRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

func (req donorRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@"):
		return "a valid email is required"
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	default:
		return ""
	}
}

func (s *Server) handleListDonors(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	query := r.URL.Query().Get("q")

	donors, total, err := s.store.ListDonors(r.Context(), query, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Donor]{
		Items: donors, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateDonor(w http.ResponseWriter, r *http.Request) {
	var req donorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, msg)
		return
	}

	now := time.Now().UTC()
	d := &domain.Donor{
		ID:        domain.NewID(),
		Email:     domain.NormalizeEmail(req.Email),
		Name:      strings.TrimSpace(req.Name),
		Phone:     req.Phone,
		Address:   req.Address,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateDonor(r.Context(), d); err != nil {
		respondStoreError(w, r, err)
		return
	}

	s.invalidateStats(r.Context())
	writeJSON(w, r, http.StatusCreated, d)
}

func (s *Server) handleGetDonor(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDonorByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleUpdateDonor(w http.ResponseWriter, r *http.Request) {
	var req donorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, msg)
		return
	}

	d, err := s.store.GetDonorByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	d.Email = domain.NormalizeEmail(req.Email)
	d.Name = strings.TrimSpace(req.Name)
	d.Phone = req.Phone
	d.Address = req.Address
	d.Notes = req.Notes
	d.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateDonor(r.Context(), d); err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleDeleteDonor(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDonor(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, r, err)
		return
	}
	s.invalidateStats(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDonorDonations(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "id")

	// A missing donor is 404, not an empty page.
	if _, err := s.store.GetDonorByID(r.Context(), donorID); err != nil {
		respondStoreError(w, r, err)
		return
	}

	limit, offset := pageParams(r)
	donations, total, err := s.store.ListDonations(r.Context(), store.DonationFilter{DonorID: donorID}, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Donation]{
		Items: donations, Total: total, Limit: limit, Offset: offset,
	})
}
