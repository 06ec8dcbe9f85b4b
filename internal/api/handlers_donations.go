package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/mailer"
	"github.com/causewayhq/causeway/internal/metrics"
	"github.com/causewayhq/causeway/internal/store"
)

type donationRequest struct {
	DonorID     string `json:"donor_id"`
	CampaignID  string `json:"campaign_id,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	Status      string `json:"status,omitempty"` // pending|completed; empty = completed
	Message     string `json:"message,omitempty"`
	ReceivedAt  string `json:"received_at,omitempty"` // RFC 3339; empty = now
}

// receiptResponse reports whether the receipt email went out. Mail failures
// never fail the request; sent stays false and the donation is unchanged.
type receiptResponse struct {
	Sent     bool             `json:"sent"`
	Donation *domain.Donation `json:"donation"`
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.DonationFilter{
		DonorID:    q.Get("donor_id"),
		CampaignID: q.Get("campaign_id"),
		Status:     domain.DonationStatus(q.Get("status")),
	}
	if f.Status != "" && !f.Status.IsValid() {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown status filter")
		return
	}

	limit, offset := pageParams(r)
	donations, total, err := s.store.ListDonations(r.Context(), f, limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.Donation]{
		Items: donations, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	receivedAt := now
	if req.ReceivedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "received_at must be RFC 3339")
			return
		}
		receivedAt = parsed.UTC()
	}

	status := domain.DonationCompleted
	if req.Status != "" {
		status = domain.DonationStatus(req.Status)
		if status == domain.DonationRefunded {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "donations cannot be created refunded")
			return
		}
	}

	d := &domain.Donation{
		ID:          domain.NewID(),
		DonorID:     req.DonorID,
		CampaignID:  req.CampaignID,
		AmountCents: req.AmountCents,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Method:      domain.DonationMethod(req.Method),
		Status:      status,
		Message:     req.Message,
		ReceivedAt:  receivedAt,
		CreatedAt:   now,
	}
	if err := d.Validate(); err != nil {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	}

	if err := s.store.CreateDonation(r.Context(), d); err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.RecordDonation(string(d.Method), d.AmountCents)
	s.invalidateStats(r.Context())

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "donation.recorded").
		Str(log.FieldDonorID, d.DonorID).
		Str(log.FieldCampaignID, d.CampaignID).
		Int64(log.FieldAmountCents, d.AmountCents).
		Str(log.FieldCurrency, d.Currency).
		Msg("donation recorded")

	writeJSON(w, r, http.StatusCreated, d)
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.GetDonationByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleCompleteDonation(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.UpdateDonationStatus(r.Context(), chi.URLParam(r, "id"), domain.DonationCompleted)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.RecordDonationStatus(string(domain.DonationCompleted))
	s.invalidateStats(r.Context())
	writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleRefundDonation(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.UpdateDonationStatus(r.Context(), chi.URLParam(r, "id"), domain.DonationRefunded)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	metrics.RecordDonationStatus(string(domain.DonationRefunded))
	s.invalidateStats(r.Context())

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str("event", "donation.refunded").
		Str(log.FieldDonorID, d.DonorID).
		Int64(log.FieldAmountCents, d.AmountCents).
		Msg("donation refunded")

	writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleSendReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := s.store.GetDonationByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	if d.Status != domain.DonationCompleted {
		RespondError(w, r, http.StatusConflict, ErrConflict, "receipts are only sent for completed donations")
		return
	}

	donor, err := s.store.GetDonorByID(ctx, d.DonorID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	campaignTitle := ""
	if d.CampaignID != "" {
		if c, err := s.store.GetCampaignByID(ctx, d.CampaignID); err == nil {
			campaignTitle = c.Title
		}
	}

	msg := mailer.DonationReceipt(donor, d, campaignTitle)
	if err := s.mail.Send(ctx, msg); err != nil {
		// The donation stays untouched so the receipt can be retried.
		logger := log.WithComponentFromContext(ctx, "api")
		logger.Warn().
			Err(err).
			Str("event", "donation.receipt_failed").
			Str(log.FieldDonorID, d.DonorID).
			Msg("receipt mail failed")
		writeJSON(w, r, http.StatusOK, receiptResponse{Sent: false, Donation: d})
		return
	}

	now := time.Now().UTC()
	if err := s.store.MarkDonationReceiptSent(ctx, d.ID, now); err != nil && !errors.Is(err, store.ErrNotFound) {
		respondStoreError(w, r, err)
		return
	}
	d.ReceiptSentAt = &now

	metrics.IncReceiptSent()
	writeJSON(w, r, http.StatusOK, receiptResponse{Sent: true, Donation: d})
}
