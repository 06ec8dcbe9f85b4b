package domain

import "time"

// Donor is a supporter who has given, or may give, to the organization.
type Donor struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Aggregates computed from completed donations, filled on read.
	TotalDonatedCents int64      `json:"total_donated_cents"`
	DonationCount     int        `json:"donation_count"`
	LastDonationAt    *time.Time `json:"last_donation_at,omitempty"`
}
