package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

func TestDonationRefundFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "refund@example.org", "Refund Case")
	d := seedDonation(t, s, donor.ID, "", 5_000, domain.DonationCompleted)

	refunded, err := s.UpdateDonationStatus(ctx, d.ID, domain.DonationRefunded)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != domain.DonationRefunded {
		t.Errorf("status = %s, want refunded", refunded.Status)
	}

	// A refund is terminal.
	_, err = s.UpdateDonationStatus(ctx, d.ID, domain.DonationCompleted)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict re-completing refund, got: %v", err)
	}
	_, err = s.UpdateDonationStatus(ctx, d.ID, domain.DonationRefunded)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on double refund, got: %v", err)
	}
}

func TestDonationUnknownDonorNotFound(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	err := s.CreateDonation(context.Background(), &domain.Donation{
		ID: domain.NewID(), DonorID: domain.NewID(), AmountCents: 100,
		Currency: "EUR", Method: domain.MethodCash, Status: domain.DonationCompleted,
		ReceivedAt: now, CreatedAt: now,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown donor, got: %v", err)
	}
}

func TestListDonationsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := seedDonor(t, s, "alice@example.org", "Alice")
	bob := seedDonor(t, s, "bob2@example.org", "Bob")
	camp := seedCampaign(t, s, "Winter Appeal", domain.CampaignActive)

	seedDonation(t, s, alice.ID, camp.ID, 1_000, domain.DonationCompleted)
	seedDonation(t, s, alice.ID, "", 2_000, domain.DonationPending)
	seedDonation(t, s, bob.ID, camp.ID, 3_000, domain.DonationCompleted)

	tests := []struct {
		name   string
		filter DonationFilter
		want   int
	}{
		{"all", DonationFilter{}, 3},
		{"by donor", DonationFilter{DonorID: alice.ID}, 2},
		{"by campaign", DonationFilter{CampaignID: camp.ID}, 2},
		{"by status", DonationFilter{Status: domain.DonationPending}, 1},
		{"donor and status", DonationFilter{DonorID: alice.ID, Status: domain.DonationCompleted}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.ListDonations(ctx, tt.filter, 50, 0)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tt.want || len(got) != tt.want {
				t.Errorf("got %d (total %d), want %d", len(got), total, tt.want)
			}
		})
	}
}

func TestMarkDonationReceiptSent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	donor := seedDonor(t, s, "receipt@example.org", "Receipt")
	d := seedDonation(t, s, donor.ID, "", 9_900, domain.DonationCompleted)

	at := time.Now().UTC()
	if err := s.MarkDonationReceiptSent(ctx, d.ID, at); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	got, err := s.GetDonationByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ReceiptSentAt == nil {
		t.Fatal("receipt_sent_at not set")
	}

	if err := s.MarkDonationReceiptSent(ctx, domain.NewID(), at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown donation, got: %v", err)
	}
}
