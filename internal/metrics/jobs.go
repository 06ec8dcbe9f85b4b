package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_job_runs_total",
		Help: "Background job runs by job name and outcome",
	}, []string{"job", "outcome"}) // outcome=success|failure

	jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "causeway_job_duration_seconds",
		Help:    "Background job run duration by job name",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	}, []string{"job"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "causeway_sessions_active",
		Help: "Refresh sessions currently held in the session store",
	})

	cacheHitRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "causeway_cache_hit_ratio",
		Help: "Cache hit ratio since process start by backend",
	}, []string{"backend"})

	cacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "causeway_cache_entries",
		Help: "Entries currently held by the cache backend",
	}, []string{"backend"})
)

// RecordJobRun records one completed background job run.
func RecordJobRun(job string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	jobRunsTotal.WithLabelValues(job, outcome).Inc()
	jobDurationSeconds.WithLabelValues(job).Observe(duration.Seconds())
}

func SetSessionsActive(n int) { sessionsActive.Set(float64(n)) }

// RecordCacheStats publishes a cache snapshot. Hits and misses are totals
// since process start, so the ratio is cumulative, not windowed.
func RecordCacheStats(backend string, hits, misses, entries int64) {
	total := hits + misses
	if total > 0 {
		cacheHitRatio.WithLabelValues(backend).Set(float64(hits) / float64(total))
	}
	cacheEntries.WithLabelValues(backend).Set(float64(entries))
}
