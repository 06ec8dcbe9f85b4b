package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewTicketCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := NewTicketCode()
		if err != nil {
			t.Fatalf("NewTicketCode() error: %v", err)
		}
		if len(code) != TicketCodeLength {
			t.Fatalf("code length = %d, want %d", len(code), TicketCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(ticketAlphabet, r) {
				t.Fatalf("code %q contains invalid character %q", code, r)
			}
		}
		seen[code] = struct{}{}
	}
	// 100 random 8-char codes over a 31-char alphabet should not collide
	if len(seen) != 100 {
		t.Errorf("expected 100 distinct codes, got %d", len(seen))
	}
}

func TestEventHasCapacityFor(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		issued   int
		n        int
		want     bool
	}{
		{"unlimited", 0, 1000, 50, true},
		{"within capacity", 100, 90, 10, true},
		{"exceeds capacity", 100, 95, 6, false},
		{"exactly full", 100, 100, 1, false},
		{"empty event", 10, 0, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{Capacity: tt.capacity, TicketsIssued: tt.issued}
			if got := e.HasCapacityFor(tt.n); got != tt.want {
				t.Errorf("HasCapacityFor(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestEventValidate(t *testing.T) {
	now := time.Now().UTC()
	valid := Event{
		Title:    "Spring Gala",
		StartsAt: now,
		EndsAt:   now.Add(3 * time.Hour),
		Capacity: 150,
		Status:   EventScheduled,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"missing title", func(e *Event) { e.Title = "" }},
		{"ends before starts", func(e *Event) { e.EndsAt = e.StartsAt.Add(-time.Hour) }},
		{"negative capacity", func(e *Event) { e.Capacity = -1 }},
		{"negative price", func(e *Event) { e.PriceCents = -100 }},
		{"bad status", func(e *Event) { e.Status = "postponed" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestDonationValidate(t *testing.T) {
	valid := Donation{
		DonorID:     "donor-1",
		AmountCents: 2500,
		Currency:    "EUR",
		Method:      MethodCard,
		Status:      DonationCompleted,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid donation rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Donation)
	}{
		{"missing donor", func(d *Donation) { d.DonorID = "" }},
		{"zero amount", func(d *Donation) { d.AmountCents = 0 }},
		{"negative amount", func(d *Donation) { d.AmountCents = -500 }},
		{"bad currency", func(d *Donation) { d.Currency = "EURO" }},
		{"bad method", func(d *Donation) { d.Method = "crypto" }},
		{"bad status", func(d *Donation) { d.Status = "settled" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			if err := d.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestCampaignProgress(t *testing.T) {
	tests := []struct {
		name   string
		goal   int64
		raised int64
		want   float64
	}{
		{"halfway", 10000, 5000, 0.5},
		{"over goal", 10000, 12000, 1.2},
		{"open ended", 0, 5000, 0},
		{"nothing raised", 10000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Campaign{GoalCents: tt.goal, RaisedCents: tt.raised}
			if got := c.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ada@Example.ORG", "ada@example.org"},
		{"  spaced@example.org  ", "spaced@example.org"},
		{"plain@example.org", "plain@example.org"},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
