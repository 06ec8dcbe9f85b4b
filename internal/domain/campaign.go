package domain

import (
	"fmt"
	"time"
)

// CampaignStatus is the lifecycle state of a fundraising campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignArchived  CampaignStatus = "archived"
)

// IsValid checks if the status is known.
func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignCompleted, CampaignArchived:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status may move to next.
// Lifecycle: draft -> active -> completed|archived; completed -> archived.
func (s CampaignStatus) CanTransition(next CampaignStatus) bool {
	switch s {
	case CampaignDraft:
		return next == CampaignActive || next == CampaignArchived
	case CampaignActive:
		return next == CampaignCompleted || next == CampaignArchived
	case CampaignCompleted:
		return next == CampaignArchived
	default:
		return false
	}
}

// Campaign is a fundraising drive that donations can be attributed to.
type Campaign struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	GoalCents   int64          `json:"goal_cents"` // 0 = open-ended
	Status      CampaignStatus `json:"status"`
	StartsAt    time.Time      `json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Aggregates computed from completed donations, filled on read.
	RaisedCents int64 `json:"raised_cents"`
	DonorCount  int   `json:"donor_count"`
}

// Progress returns the raised-to-goal ratio, or 0 for open-ended campaigns.
func (c Campaign) Progress() float64 {
	if c.GoalCents <= 0 {
		return 0
	}
	return float64(c.RaisedCents) / float64(c.GoalCents)
}

// Validate checks invariants on a campaign before it is written.
func (c Campaign) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("campaign: title is required")
	}
	if c.GoalCents < 0 {
		return fmt.Errorf("campaign: goal must be >= 0, got %d", c.GoalCents)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("campaign: unknown status %q", c.Status)
	}
	if c.EndsAt != nil && !c.EndsAt.After(c.StartsAt) {
		return fmt.Errorf("campaign: ends_at must be after starts_at")
	}
	return nil
}
