package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

func seedVolunteer(t *testing.T, s *Store, email string) *domain.Volunteer {
	t.Helper()
	now := time.Now().UTC()
	v := &domain.Volunteer{
		ID:        domain.NewID(),
		Email:     domain.NormalizeEmail(email),
		Name:      "Helping Hand",
		Skills:    []string{"driving", "first-aid"},
		Status:    domain.VolunteerPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateVolunteer(context.Background(), v); err != nil {
		t.Fatalf("seed volunteer: %v", err)
	}
	return v
}

func TestVolunteerActivationStampsJoinedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := seedVolunteer(t, s, "hand@example.org")

	active, err := s.UpdateVolunteerStatus(ctx, v.ID, domain.VolunteerActive)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if active.JoinedAt == nil {
		t.Fatal("joined_at not stamped on first activation")
	}
	joined := *active.JoinedAt

	// Deactivate and reactivate: joined_at keeps the first value.
	if _, err := s.UpdateVolunteerStatus(ctx, v.ID, domain.VolunteerInactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	again, err := s.UpdateVolunteerStatus(ctx, v.ID, domain.VolunteerActive)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !again.JoinedAt.Equal(joined) {
		t.Errorf("joined_at changed on reactivation: %v != %v", again.JoinedAt, joined)
	}

	// Active cannot move back to pending.
	if _, err := s.UpdateVolunteerStatus(ctx, v.ID, domain.VolunteerPending); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict moving to pending, got: %v", err)
	}
}

func TestVolunteerSkillsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := seedVolunteer(t, s, "skills@example.org")

	got, err := s.GetVolunteerByID(ctx, v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Skills) != 2 || got.Skills[0] != "driving" {
		t.Errorf("skills = %v, want [driving first-aid]", got.Skills)
	}

	got.Skills = nil
	got.UpdatedAt = time.Now().UTC()
	if err := s.UpdateVolunteer(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	reread, err := s.GetVolunteerByID(ctx, v.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if len(reread.Skills) != 0 {
		t.Errorf("skills = %v, want empty", reread.Skills)
	}
}

func TestListVolunteersByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedVolunteer(t, s, "p1@example.org")
	v := seedVolunteer(t, s, "p2@example.org")
	if _, err := s.UpdateVolunteerStatus(ctx, v.ID, domain.VolunteerActive); err != nil {
		t.Fatalf("activate: %v", err)
	}

	pending, total, err := s.ListVolunteers(ctx, domain.VolunteerPending, 50, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Errorf("pending = %d (total %d), want 1", len(pending), total)
	}
}
