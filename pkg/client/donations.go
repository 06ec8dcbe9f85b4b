package client

import (
	"context"
	"net/http"
	"net/url"
)

// DonationsService records and settles donations.
type DonationsService struct {
	c *Client
}

// DonationParams is the create payload for a donation.
type DonationParams struct {
	DonorID     string `json:"donor_id"`
	CampaignID  string `json:"campaign_id,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	Status      string `json:"status,omitempty"`      // pending|completed; empty = completed
	Message     string `json:"message,omitempty"`
	ReceivedAt  string `json:"received_at,omitempty"` // RFC 3339; empty = now
}

// DonationListOptions filters the donation collection.
type DonationListOptions struct {
	ListOptions
	DonorID    string
	CampaignID string
	Status     DonationStatus
}

func (o DonationListOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.DonorID != "" {
		v.Set("donor_id", o.DonorID)
	}
	if o.CampaignID != "" {
		v.Set("campaign_id", o.CampaignID)
	}
	if o.Status != "" {
		v.Set("status", string(o.Status))
	}
	return v
}

// ReceiptResult reports whether the receipt email went out. Mail failures
// never fail the call; Sent stays false and the donation is unchanged.
type ReceiptResult struct {
	Sent     bool      `json:"sent"`
	Donation *Donation `json:"donation"`
}

func (s *DonationsService) List(ctx context.Context, opts DonationListOptions) (*Page[Donation], error) {
	var page Page[Donation]
	if err := s.c.doJSON(ctx, http.MethodGet, "/donations", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *DonationsService) Create(ctx context.Context, params DonationParams) (*Donation, error) {
	var d Donation
	if err := s.c.doJSON(ctx, http.MethodPost, "/donations", nil, params, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DonationsService) Get(ctx context.Context, id string) (*Donation, error) {
	var d Donation
	if err := s.c.doJSON(ctx, http.MethodGet, "/donations/"+url.PathEscape(id), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Complete settles a pending donation.
func (s *DonationsService) Complete(ctx context.Context, id string) (*Donation, error) {
	var d Donation
	if err := s.c.doJSON(ctx, http.MethodPost, "/donations/"+url.PathEscape(id)+"/complete", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Refund marks a donation refunded. Refunds are terminal.
func (s *DonationsService) Refund(ctx context.Context, id string) (*Donation, error) {
	var d Donation
	if err := s.c.doJSON(ctx, http.MethodPost, "/donations/"+url.PathEscape(id)+"/refund", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SendReceipt emails the donor a receipt for a completed donation.
func (s *DonationsService) SendReceipt(ctx context.Context, id string) (*ReceiptResult, error) {
	var res ReceiptResult
	if err := s.c.doJSON(ctx, http.MethodPost, "/donations/"+url.PathEscape(id)+"/receipt", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
