package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

func seedMembership(t *testing.T, s *Store, donorID string, status domain.MembershipStatus, expiresAt time.Time) *domain.Membership {
	t.Helper()
	now := time.Now().UTC()
	m := &domain.Membership{
		ID:        domain.NewID(),
		DonorID:   donorID,
		Tier:      domain.TierBasic,
		Status:    status,
		StartedAt: expiresAt.Add(-domain.MembershipPeriod),
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateMembership(context.Background(), m); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return m
}

func TestRenewMembershipBeforeExpiryExtendsFromExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "member@example.org", "Member")

	now := time.Now().UTC().Truncate(time.Second)
	expiry := now.Add(30 * 24 * time.Hour)
	m := seedMembership(t, s, donor.ID, domain.MembershipActive, expiry)

	renewed, err := s.RenewMembership(ctx, m.ID, now)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	want := expiry.Add(domain.MembershipPeriod)
	if !renewed.ExpiresAt.Equal(want) {
		t.Errorf("expires = %v, want %v", renewed.ExpiresAt, want)
	}
}

func TestRenewMembershipAfterExpiryStartsFresh(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "lapsed@example.org", "Lapsed")

	now := time.Now().UTC().Truncate(time.Second)
	m := seedMembership(t, s, donor.ID, domain.MembershipLapsed, now.Add(-10*24*time.Hour))

	renewed, err := s.RenewMembership(ctx, m.ID, now)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if renewed.Status != domain.MembershipActive {
		t.Errorf("status = %s, want active", renewed.Status)
	}
	want := now.Add(domain.MembershipPeriod)
	if !renewed.ExpiresAt.Equal(want) {
		t.Errorf("expires = %v, want %v", renewed.ExpiresAt, want)
	}
}

func TestCancelMembershipIsTerminal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "cancel@example.org", "Cancel")
	m := seedMembership(t, s, donor.ID, domain.MembershipActive, time.Now().UTC().Add(100*24*time.Hour))

	now := time.Now().UTC()
	cancelled, err := s.CancelMembership(ctx, m.ID, now)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.MembershipCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	if _, err := s.CancelMembership(ctx, m.ID, now); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on double cancel, got: %v", err)
	}
	if _, err := s.RenewMembership(ctx, m.ID, now); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict renewing cancelled, got: %v", err)
	}
}

func TestExpiringMembershipsAndLapse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "sweep@example.org", "Sweep")

	now := time.Now().UTC()
	past := seedMembership(t, s, donor.ID, domain.MembershipActive, now.Add(-24*time.Hour))
	seedMembership(t, s, donor.ID, domain.MembershipActive, now.Add(90*24*time.Hour))

	due, err := s.ListExpiringMemberships(ctx, now)
	if err != nil {
		t.Fatalf("list expiring: %v", err)
	}
	if len(due) != 1 || due[0].ID != past.ID {
		t.Fatalf("due = %v, want exactly the past membership", due)
	}

	if err := s.LapseMembership(ctx, past.ID, now); err != nil {
		t.Fatalf("lapse: %v", err)
	}
	got, err := s.GetMembershipByID(ctx, past.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.MembershipLapsed {
		t.Errorf("status = %s, want lapsed", got.Status)
	}

	// Lapsing an already lapsed membership reports not found, the sweep
	// treats that as already handled.
	if err := s.LapseMembership(ctx, past.ID, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double lapse, got: %v", err)
	}
}

func TestListMembershipsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedDonor(t, s, "filter-a@example.org", "A")
	b := seedDonor(t, s, "filter-b@example.org", "B")

	future := time.Now().UTC().Add(200 * 24 * time.Hour)
	seedMembership(t, s, a.ID, domain.MembershipActive, future)
	seedMembership(t, s, b.ID, domain.MembershipActive, future)
	mb := seedMembership(t, s, b.ID, domain.MembershipActive, future)
	if _, err := s.CancelMembership(ctx, mb.ID, time.Now().UTC()); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	byDonor, total, err := s.ListMemberships(ctx, MembershipFilter{DonorID: b.ID}, 50, 0)
	if err != nil {
		t.Fatalf("list by donor: %v", err)
	}
	if total != 2 || len(byDonor) != 2 {
		t.Errorf("by donor = %d (total %d), want 2", len(byDonor), total)
	}

	active, total, err := s.ListMemberships(ctx, MembershipFilter{Status: domain.MembershipActive}, 50, 0)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if total != 2 || len(active) != 2 {
		t.Errorf("active = %d (total %d), want 2", len(active), total)
	}
}
