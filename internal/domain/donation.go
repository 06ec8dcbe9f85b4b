package domain

import (
	"fmt"
	"time"
)

// DonationMethod is how a donation arrived.
type DonationMethod string

const (
	MethodCard  DonationMethod = "card"
	MethodBank  DonationMethod = "bank"
	MethodCash  DonationMethod = "cash"
	MethodOther DonationMethod = "other"
)

// IsValid checks if the method is known.
func (m DonationMethod) IsValid() bool {
	switch m {
	case MethodCard, MethodBank, MethodCash, MethodOther:
		return true
	default:
		return false
	}
}

// DonationStatus is the settlement state of a donation.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationRefunded  DonationStatus = "refunded"
)

// IsValid checks if the status is known.
func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationPending, DonationCompleted, DonationRefunded:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status may move to next.
// Refunds are terminal; a refunded donation never returns to completed.
func (s DonationStatus) CanTransition(next DonationStatus) bool {
	switch s {
	case DonationPending:
		return next == DonationCompleted || next == DonationRefunded
	case DonationCompleted:
		return next == DonationRefunded
	default:
		return false
	}
}

// Donation records a single contribution. Amounts are integer cents; the
// platform records donations, it does not charge them.
type Donation struct {
	ID            string         `json:"id"`
	DonorID       string         `json:"donor_id"`
	CampaignID    string         `json:"campaign_id,omitempty"`
	AmountCents   int64          `json:"amount_cents"`
	Currency      string         `json:"currency"`
	Method        DonationMethod `json:"method"`
	Status        DonationStatus `json:"status"`
	Message       string         `json:"message,omitempty"`
	ReceiptSentAt *time.Time     `json:"receipt_sent_at,omitempty"`
	ReceivedAt    time.Time      `json:"received_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Validate checks invariants on a donation before it is written.
func (d Donation) Validate() error {
	if d.DonorID == "" {
		return fmt.Errorf("donation: donor_id is required")
	}
	if d.AmountCents <= 0 {
		return fmt.Errorf("donation: amount must be positive, got %d", d.AmountCents)
	}
	if len(d.Currency) != 3 {
		return fmt.Errorf("donation: currency must be a 3-letter ISO code, got %q", d.Currency)
	}
	if !d.Method.IsValid() {
		return fmt.Errorf("donation: unknown method %q", d.Method)
	}
	if !d.Status.IsValid() {
		return fmt.Errorf("donation: unknown status %q", d.Status)
	}
	return nil
}
