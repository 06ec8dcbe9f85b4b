package jobs

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/cache"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/mailer"
	"github.com/causewayhq/causeway/internal/store"
)

func newTestScheduler(t *testing.T) (*Scheduler, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "causeway.db"), store.DefaultConfig())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := auth.OpenSessionStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("open sessions: %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close() })

	c := cache.NewMemory(0)
	s := NewScheduler(st, sessions, c, "memory", time.Minute, mailer.NewNoop())
	return s, st
}

func seedDonor(t *testing.T, st *store.Store) *domain.Donor {
	t.Helper()
	d := &domain.Donor{
		ID:        domain.NewID(),
		Email:     domain.NewID() + "@example.org",
		Name:      "Test Donor",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := st.CreateDonor(context.Background(), d); err != nil {
		t.Fatalf("seed donor: %v", err)
	}
	return d
}

func seedMembership(t *testing.T, st *store.Store, donorID string, autoRenew bool, expiresAt time.Time) *domain.Membership {
	t.Helper()
	now := time.Now().UTC()
	m := &domain.Membership{
		ID:        domain.NewID(),
		DonorID:   donorID,
		Tier:      domain.TierSilver,
		Status:    domain.MembershipActive,
		AutoRenew: autoRenew,
		StartedAt: now.AddDate(-1, 0, 0),
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateMembership(context.Background(), m); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return m
}

func TestSweepMemberships(t *testing.T) {
	s, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Now().UTC()

	donor := seedDonor(t, st)
	expiredRenewing := seedMembership(t, st, donor.ID, true, now.Add(-24*time.Hour))
	expiredLapsing := seedMembership(t, st, donor.ID, false, now.Add(-time.Hour))
	current := seedMembership(t, st, donor.ID, false, now.Add(30*24*time.Hour))

	if err := s.SweepMemberships(ctx); err != nil {
		t.Fatalf("SweepMemberships: %v", err)
	}

	renewed, err := st.GetMembershipByID(ctx, expiredRenewing.ID)
	if err != nil {
		t.Fatalf("get renewed: %v", err)
	}
	if renewed.Status != domain.MembershipActive {
		t.Errorf("auto-renew membership status = %s, want active", renewed.Status)
	}
	if !renewed.ExpiresAt.After(now) {
		t.Errorf("auto-renew membership still expired: %v", renewed.ExpiresAt)
	}

	lapsed, err := st.GetMembershipByID(ctx, expiredLapsing.ID)
	if err != nil {
		t.Fatalf("get lapsed: %v", err)
	}
	if lapsed.Status != domain.MembershipLapsed {
		t.Errorf("membership status = %s, want lapsed", lapsed.Status)
	}

	untouched, err := st.GetMembershipByID(ctx, current.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if untouched.Status != domain.MembershipActive {
		t.Errorf("current membership status = %s, want active", untouched.Status)
	}
}

func TestSweepMembershipsIdempotent(t *testing.T) {
	s, st := newTestScheduler(t)
	ctx := context.Background()

	donor := seedDonor(t, st)
	seedMembership(t, st, donor.ID, false, time.Now().UTC().Add(-time.Hour))

	if err := s.SweepMemberships(ctx); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := s.SweepMemberships(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
}

func TestSweepCampaigns(t *testing.T) {
	s, st := newTestScheduler(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	ended := &domain.Campaign{
		ID:        domain.NewID(),
		Title:     "Winter Appeal",
		Status:    domain.CampaignActive,
		StartsAt:  now.AddDate(0, -3, 0),
		EndsAt:    &past,
		CreatedAt: now,
		UpdatedAt: now,
	}
	running := &domain.Campaign{
		ID:        domain.NewID(),
		Title:     "Spring Gala",
		Status:    domain.CampaignActive,
		StartsAt:  now.AddDate(0, -1, 0),
		EndsAt:    &future,
		CreatedAt: now,
		UpdatedAt: now,
	}
	openEnded := &domain.Campaign{
		ID:        domain.NewID(),
		Title:     "General Fund",
		Status:    domain.CampaignActive,
		StartsAt:  now.AddDate(-1, 0, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, c := range []*domain.Campaign{ended, running, openEnded} {
		if err := st.CreateCampaign(ctx, c); err != nil {
			t.Fatalf("seed campaign: %v", err)
		}
	}

	if err := s.SweepCampaigns(ctx); err != nil {
		t.Fatalf("SweepCampaigns: %v", err)
	}

	got, err := st.GetCampaignByID(ctx, ended.ID)
	if err != nil {
		t.Fatalf("get ended: %v", err)
	}
	if got.Status != domain.CampaignCompleted {
		t.Errorf("ended campaign status = %s, want completed", got.Status)
	}

	for _, c := range []*domain.Campaign{running, openEnded} {
		got, err := st.GetCampaignByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("get campaign: %v", err)
		}
		if got.Status != domain.CampaignActive {
			t.Errorf("campaign %s status = %s, want active", got.Title, got.Status)
		}
	}
}

func TestCollectSessions(t *testing.T) {
	s, _ := newTestScheduler(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.sessions.Create(ctx, domain.NewID()); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	if err := s.CollectSessions(ctx); err != nil {
		t.Fatalf("CollectSessions: %v", err)
	}
}

func TestRefreshStatsPrimesCache(t *testing.T) {
	s, st := newTestScheduler(t)
	ctx := context.Background()

	seedDonor(t, st)

	if _, ok := s.cache.Get(ctx, cache.KeySummary); ok {
		t.Fatal("summary cached before refresh")
	}

	if err := s.RefreshStats(ctx); err != nil {
		t.Fatalf("RefreshStats: %v", err)
	}

	body, ok := s.cache.Get(ctx, cache.KeySummary)
	if !ok {
		t.Fatal("summary not cached after refresh")
	}

	var summary store.DashboardSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		t.Fatalf("unmarshal cached summary: %v", err)
	}
	if summary.DonorCount != 1 {
		t.Errorf("DonorCount = %d, want 1", summary.DonorCount)
	}
}

func TestSchedulerRegisterRejectsBadSpec(t *testing.T) {
	s, _ := newTestScheduler(t)

	err := s.Register(Config{MembershipSweep: "not a cron spec"})
	if err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s, _ := newTestScheduler(t)

	if err := s.Register(Config{
		MembershipSweep: "0 3 * * *",
		CampaignSweep:   "0 * * * *",
		SessionSweep:    "30 3 * * *",
		StatsRefresh:    "*/15 * * * *",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
