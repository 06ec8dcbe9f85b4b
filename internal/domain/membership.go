package domain

import (
	"fmt"
	"time"
)

// MembershipTier is the level of a recurring membership.
type MembershipTier string

const (
	TierBasic  MembershipTier = "basic"
	TierSilver MembershipTier = "silver"
	TierGold   MembershipTier = "gold"
	TierPatron MembershipTier = "patron"
)

// IsValid checks if the tier is known.
func (t MembershipTier) IsValid() bool {
	switch t {
	case TierBasic, TierSilver, TierGold, TierPatron:
		return true
	default:
		return false
	}
}

// MembershipStatus is the standing of a membership.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipLapsed    MembershipStatus = "lapsed"
	MembershipCancelled MembershipStatus = "cancelled"
)

// IsValid checks if the status is known.
func (s MembershipStatus) IsValid() bool {
	switch s {
	case MembershipActive, MembershipLapsed, MembershipCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status may move to next.
// Cancellation is terminal; lapsed memberships can be renewed back to active.
func (s MembershipStatus) CanTransition(next MembershipStatus) bool {
	switch s {
	case MembershipActive:
		return next == MembershipLapsed || next == MembershipCancelled
	case MembershipLapsed:
		return next == MembershipActive || next == MembershipCancelled
	default:
		return false
	}
}

// MembershipPeriod is the validity added by one renewal.
const MembershipPeriod = 365 * 24 * time.Hour

// Membership is a donor's recurring support arrangement.
type Membership struct {
	ID        string           `json:"id"`
	DonorID   string           `json:"donor_id"`
	Tier      MembershipTier   `json:"tier"`
	Status    MembershipStatus `json:"status"`
	AutoRenew bool             `json:"auto_renew"`
	StartedAt time.Time        `json:"started_at"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Validate checks invariants on a membership before it is written.
func (m Membership) Validate() error {
	if m.DonorID == "" {
		return fmt.Errorf("membership: donor_id is required")
	}
	if !m.Tier.IsValid() {
		return fmt.Errorf("membership: unknown tier %q", m.Tier)
	}
	if !m.Status.IsValid() {
		return fmt.Errorf("membership: unknown status %q", m.Status)
	}
	if !m.ExpiresAt.After(m.StartedAt) {
		return fmt.Errorf("membership: expires_at must be after started_at")
	}
	return nil
}

// RenewedUntil computes the expiry after one renewal at the given time.
// Renewing before expiry extends from the current expiry; renewing after
// expiry starts a fresh period from now.
func (m Membership) RenewedUntil(now time.Time) time.Time {
	base := m.ExpiresAt
	if now.After(base) {
		base = now
	}
	return base.Add(MembershipPeriod)
}

// Expired reports whether the membership is past its expiry at the given time.
func (m Membership) Expired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}
