// Package jobs runs scheduled maintenance: membership expiry, campaign
// completion, session store GC, and dashboard cache refresh.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/cache"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/mailer"
	"github.com/causewayhq/causeway/internal/metrics"
	"github.com/causewayhq/causeway/internal/store"
)

// Config holds the cron schedules. An empty spec disables that job.
type Config struct {
	MembershipSweep string
	CampaignSweep   string
	SessionSweep    string
	StatsRefresh    string
}

// Scheduler owns the cron runner and the job implementations.
type Scheduler struct {
	cron      *cron.Cron
	store     *store.Store
	sessions  *auth.SessionStore
	cache     cache.Cache
	cacheName string
	cacheTTL  time.Duration
	mail      mailer.Mailer
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler over the shared infrastructure. The
// cacheName is the backend label used on cache metrics.
func NewScheduler(st *store.Store, sessions *auth.SessionStore, c cache.Cache, cacheName string, cacheTTL time.Duration, mail mailer.Mailer) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		store:     st,
		sessions:  sessions,
		cache:     c,
		cacheName: cacheName,
		cacheTTL:  cacheTTL,
		mail:      mail,
		logger:    log.WithComponent("jobs"),
	}
}

// Register adds all configured jobs. Specs use the standard 5-field cron
// syntax.
func (s *Scheduler) Register(cfg Config) error {
	jobs := []struct {
		name string
		spec string
		fn   func(ctx context.Context) error
	}{
		{"membership_sweep", cfg.MembershipSweep, s.SweepMemberships},
		{"campaign_sweep", cfg.CampaignSweep, s.SweepCampaigns},
		{"session_gc", cfg.SessionSweep, s.CollectSessions},
		{"stats_refresh", cfg.StatsRefresh, s.RefreshStats},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		name, fn := job.name, job.fn
		if _, err := s.cron.AddFunc(job.spec, func() { s.run(name, fn) }); err != nil {
			return fmt.Errorf("register job %s (%q): %w", job.name, job.spec, err)
		}
		s.logger.Info().
			Str("event", "jobs.registered").
			Str("job", job.name).
			Str("spec", job.spec).
			Msg("job registered")
	}
	return nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Str("event", "jobs.started").Msg("scheduler started")
}

// Stop halts scheduling and waits for running jobs, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info().Str("event", "jobs.stopped").Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Str("event", "jobs.stop_timeout").Msg("gave up waiting for running jobs")
		return ctx.Err()
	}
}

// run executes one job with logging, timing, and metrics. Each run gets its
// own job ID so log lines from one run correlate.
func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	ctx := log.ContextWithJobID(context.Background(), domain.NewID())
	logger := log.WithComponentFromContext(ctx, "jobs")

	logger.Info().Str("event", "job.start").Str("job", name).Msg("job starting")
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	metrics.RecordJobRun(name, duration, err)

	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "job.failed").
			Str("job", name).
			Dur("duration", duration).
			Msg("job failed")
		return
	}
	logger.Info().
		Str("event", "job.finished").
		Str("job", name).
		Dur("duration", duration).
		Msg("job finished")
}
