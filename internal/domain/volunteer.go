package domain

import (
	"fmt"
	"time"
)

// VolunteerStatus is the engagement state of a volunteer.
type VolunteerStatus string

const (
	VolunteerPending  VolunteerStatus = "pending"
	VolunteerActive   VolunteerStatus = "active"
	VolunteerInactive VolunteerStatus = "inactive"
)

// IsValid checks if the status is known.
func (s VolunteerStatus) IsValid() bool {
	switch s {
	case VolunteerPending, VolunteerActive, VolunteerInactive:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status may move to next.
// Pending volunteers activate once; active and inactive toggle freely.
func (s VolunteerStatus) CanTransition(next VolunteerStatus) bool {
	switch s {
	case VolunteerPending:
		return next == VolunteerActive || next == VolunteerInactive
	case VolunteerActive:
		return next == VolunteerInactive
	case VolunteerInactive:
		return next == VolunteerActive
	default:
		return false
	}
}

// Volunteer is a person offering time and skills to the organization.
type Volunteer struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Skills    []string        `json:"skills,omitempty"`
	Status    VolunteerStatus `json:"status"`
	JoinedAt  *time.Time      `json:"joined_at,omitempty"` // set on first activation
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate checks invariants on a volunteer before it is written.
func (v Volunteer) Validate() error {
	if v.Email == "" {
		return fmt.Errorf("volunteer: email is required")
	}
	if v.Name == "" {
		return fmt.Errorf("volunteer: name is required")
	}
	if !v.Status.IsValid() {
		return fmt.Errorf("volunteer: unknown status %q", v.Status)
	}
	return nil
}
