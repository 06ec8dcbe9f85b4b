package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// IsValid checks if the status is known.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventScheduled, EventCancelled, EventCompleted:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status may move to next.
func (s EventStatus) CanTransition(next EventStatus) bool {
	switch s {
	case EventScheduled:
		return next == EventCancelled || next == EventCompleted
	default:
		return false
	}
}

// Event is a gathering supporters can attend, optionally tied to a campaign.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	StartsAt    time.Time   `json:"starts_at"`
	EndsAt      time.Time   `json:"ends_at"`
	Capacity    int         `json:"capacity"` // 0 = unlimited
	PriceCents  int64       `json:"price_cents"`
	Status      EventStatus `json:"status"`
	CampaignID  string      `json:"campaign_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// TicketsIssued counts non-cancelled tickets, filled on read.
	TicketsIssued int `json:"tickets_issued"`
}

// Validate checks invariants on an event before it is written.
func (e Event) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("event: title is required")
	}
	if !e.EndsAt.After(e.StartsAt) {
		return fmt.Errorf("event: ends_at must be after starts_at")
	}
	if e.Capacity < 0 {
		return fmt.Errorf("event: capacity must be >= 0, got %d", e.Capacity)
	}
	if e.PriceCents < 0 {
		return fmt.Errorf("event: price must be >= 0, got %d", e.PriceCents)
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("event: unknown status %q", e.Status)
	}
	return nil
}

// HasCapacityFor reports whether issued tickets stay within capacity after
// adding n more. Capacity 0 means unlimited.
func (e Event) HasCapacityFor(n int) bool {
	if e.Capacity == 0 {
		return true
	}
	return e.TicketsIssued+n <= e.Capacity
}

// TicketStatus is the redemption state of a ticket.
type TicketStatus string

const (
	TicketIssued    TicketStatus = "issued"
	TicketCheckedIn TicketStatus = "checked_in"
	TicketCancelled TicketStatus = "cancelled"
)

// IsValid checks if the status is known.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketIssued, TicketCheckedIn, TicketCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status may move to next.
// A cancelled ticket can never check in.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	switch s {
	case TicketIssued:
		return next == TicketCheckedIn || next == TicketCancelled
	default:
		return false
	}
}

// Ticket admits one holder to an event.
type Ticket struct {
	ID          string       `json:"id"`
	EventID     string       `json:"event_id"`
	Code        string       `json:"code"`
	HolderName  string       `json:"holder_name"`
	HolderEmail string       `json:"holder_email,omitempty"`
	Status      TicketStatus `json:"status"`
	IssuedAt    time.Time    `json:"issued_at"`
	CheckedInAt *time.Time   `json:"checked_in_at,omitempty"`
}

// ticketAlphabet avoids ambiguous characters (no 0/O, 1/I/L).
const ticketAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// TicketCodeLength is the length of generated ticket codes.
const TicketCodeLength = 8

// NewTicketCode generates a random 8-character uppercase code.
// Uniqueness per event is enforced by the store.
func NewTicketCode() (string, error) {
	buf := make([]byte, TicketCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ticket code: %w", err)
	}
	for i, b := range buf {
		buf[i] = ticketAlphabet[int(b)%len(ticketAlphabet)]
	}
	return string(buf), nil
}
