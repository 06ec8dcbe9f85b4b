package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/causewayhq/causeway/internal/cache"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/mailer"
	"github.com/causewayhq/causeway/internal/metrics"
	"github.com/causewayhq/causeway/internal/store"
)

// SweepMemberships processes memberships whose ExpiresAt has passed.
// Auto-renew extends them for another term; the rest lapse.
func (s *Scheduler) SweepMemberships(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "jobs")
	now := time.Now().UTC()

	expired, err := s.store.ListExpiringMemberships(ctx, now)
	if err != nil {
		return fmt.Errorf("list expiring memberships: %w", err)
	}

	var renewed, lapsed int
	for _, m := range expired {
		if m.AutoRenew {
			fresh, err := s.store.RenewMembership(ctx, m.ID, now)
			if err != nil {
				// Cancelled or removed since listing; skip it.
				if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
					continue
				}
				return fmt.Errorf("renew membership %s: %w", m.ID, err)
			}
			renewed++
			metrics.IncMembershipRenewed(string(fresh.Tier))
			s.sendRenewalNotice(ctx, fresh)
			continue
		}

		if err := s.store.LapseMembership(ctx, m.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return fmt.Errorf("lapse membership %s: %w", m.ID, err)
		}
		lapsed++
		metrics.IncMembershipLapsed()
	}

	if renewed > 0 || lapsed > 0 {
		s.cache.DeletePrefix(ctx, cache.StatsPrefix)
	}

	logger.Info().
		Str("event", "jobs.membership_sweep").
		Int("expired", len(expired)).
		Int("renewed", renewed).
		Int("lapsed", lapsed).
		Msg("membership sweep complete")
	return nil
}

func (s *Scheduler) sendRenewalNotice(ctx context.Context, m *domain.Membership) {
	if s.mail == nil {
		return
	}
	logger := log.WithComponentFromContext(ctx, "jobs")

	donor, err := s.store.GetDonorByID(ctx, m.DonorID)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("event", "jobs.renewal_notice_skipped").
			Str("membership_id", m.ID).
			Msg("donor lookup failed, renewal notice not sent")
		return
	}

	msg := mailer.MembershipRenewalNotice(donor, m)
	if err := s.mail.Send(ctx, msg); err != nil {
		logger.Warn().
			Err(err).
			Str("event", "jobs.renewal_notice_failed").
			Str("membership_id", m.ID).
			Msg("renewal notice not sent")
	}
}

// SweepCampaigns completes active campaigns whose EndsAt has passed.
func (s *Scheduler) SweepCampaigns(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "jobs")
	now := time.Now().UTC()

	past, err := s.store.ListActiveCampaignsPastEnd(ctx, now)
	if err != nil {
		return fmt.Errorf("list campaigns past end: %w", err)
	}

	var completed int
	for _, c := range past {
		if _, err := s.store.UpdateCampaignStatus(ctx, c.ID, domain.CampaignCompleted); err != nil {
			// Already moved by an operator since listing; skip it.
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
				continue
			}
			return fmt.Errorf("complete campaign %s: %w", c.ID, err)
		}
		completed++
		metrics.IncCampaignCompleted()
	}

	if completed > 0 {
		s.cache.DeletePrefix(ctx, cache.StatsPrefix)
	}

	logger.Info().
		Str("event", "jobs.campaign_sweep").
		Int("past_end", len(past)).
		Int("completed", completed).
		Msg("campaign sweep complete")
	return nil
}

// CollectSessions runs Badger value log GC and publishes session gauges.
// Expired sessions are dropped by Badger's own TTL; this job only reclaims
// space and reports.
func (s *Scheduler) CollectSessions(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "jobs")

	if err := s.sessions.RunGC(); err != nil {
		return fmt.Errorf("session store gc: %w", err)
	}

	count, err := s.sessions.Count(ctx)
	if err != nil {
		return fmt.Errorf("session count: %w", err)
	}
	metrics.SetSessionsActive(count)

	lsm, vlog := s.sessions.Size()
	logger.Info().
		Str("event", "jobs.session_gc").
		Int("active_sessions", count).
		Int64("lsm_bytes", lsm).
		Int64("vlog_bytes", vlog).
		Msg("session gc complete")
	return nil
}

// RefreshStats recomputes the dashboard summary and re-primes its cache
// entry so the first dashboard hit after the TTL stays fast. It also
// publishes cache backend gauges.
func (s *Scheduler) RefreshStats(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "jobs")
	now := time.Now().UTC()

	summary, err := s.store.GetDashboardSummary(ctx, now)
	if err != nil {
		return fmt.Errorf("dashboard summary: %w", err)
	}

	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	s.cache.Set(ctx, cache.KeySummary, body, s.cacheTTL)

	stats := s.cache.Stats()
	metrics.RecordCacheStats(s.cacheName, stats.Hits, stats.Misses, int64(stats.CurrentSize))

	logger.Debug().
		Str("event", "jobs.stats_refresh").
		Int64("total_raised_cents", summary.TotalRaisedCents).
		Msg("dashboard summary refreshed")
	return nil
}
