package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

func TestDonorAggregatesCountCompletedOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "giver@example.org", "Generous Giver")

	seedDonation(t, s, donor.ID, "", 5_000, domain.DonationCompleted)
	seedDonation(t, s, donor.ID, "", 2_500, domain.DonationCompleted)
	seedDonation(t, s, donor.ID, "", 10_000, domain.DonationPending)
	seedDonation(t, s, donor.ID, "", 1_000, domain.DonationRefunded)

	got, err := s.GetDonorByID(ctx, donor.ID)
	if err != nil {
		t.Fatalf("get donor: %v", err)
	}
	if got.TotalDonatedCents != 7_500 {
		t.Errorf("total = %d, want 7500", got.TotalDonatedCents)
	}
	if got.DonationCount != 2 {
		t.Errorf("count = %d, want 2", got.DonationCount)
	}
	if got.LastDonationAt == nil {
		t.Error("last donation time not set")
	}
}

func TestDonorSearchMatchesNameAndEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDonor(t, s, "anna@example.org", "Anna Andersson")
	seedDonor(t, s, "bob@example.org", "Bob Brown")
	seedDonor(t, s, "carol@andersson.net", "Carol Clark")

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by name fragment", "anders", 2},
		{"case insensitive", "ANNA", 1},
		{"by email domain", "example.org", 2},
		{"no match", "zebra", 0},
		{"empty returns all", "", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.ListDonors(ctx, tt.query, 50, 0)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tt.want || len(got) != tt.want {
				t.Errorf("query %q: got %d (total %d), want %d", tt.query, len(got), total, tt.want)
			}
		})
	}
}

func TestDonorDuplicateEmailConflicts(t *testing.T) {
	s := newTestStore(t)
	seedDonor(t, s, "once@example.org", "First")

	now := time.Now().UTC()
	err := s.CreateDonor(context.Background(), &domain.Donor{
		ID: domain.NewID(), Email: "once@example.org", Name: "Second",
		CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got: %v", err)
	}
}

func TestDeleteDonorWithHistoryConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "history@example.org", "Has History")
	seedDonation(t, s, donor.ID, "", 1_000, domain.DonationCompleted)

	err := s.DeleteDonor(ctx, donor.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got: %v", err)
	}

	fresh := seedDonor(t, s, "fresh@example.org", "No History")
	if err := s.DeleteDonor(ctx, fresh.ID); err != nil {
		t.Fatalf("delete fresh donor: %v", err)
	}
}

func TestUpdateDonor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "move@example.org", "Mover")

	donor.Phone = "+49 30 1234567"
	donor.Address = "Neue Straße 1, Berlin"
	donor.UpdatedAt = time.Now().UTC()
	if err := s.UpdateDonor(ctx, donor); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetDonorByID(ctx, donor.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phone != donor.Phone || got.Address != donor.Address {
		t.Errorf("update not persisted: %+v", got)
	}
}
