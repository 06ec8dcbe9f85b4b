// Package ratelimit throttles credential endpoints. The router-level limit
// uses go-chi/httprate; this package adds the finer per-key limiter the
// login path needs.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/causewayhq/causeway/internal/domain"
)

var rejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "causeway",
		Name:      "ratelimit_rejections_total",
		Help:      "Requests rejected by rate limiting",
	},
	[]string{"scope"},
)

// Config holds limiter settings for one scope.
type Config struct {
	// Rate is the sustained refill rate.
	Rate rate.Limit
	// Burst is the bucket size.
	Burst int
	// CleanupInterval bounds how long idle keys keep their bucket.
	CleanupInterval time.Duration
}

// PerMinute converts attempts per minute into a rate.Limit.
func PerMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed is a set of token buckets, one per key, with idle eviction.
type Keyed struct {
	cfg   Config
	scope string

	mu          sync.Mutex
	buckets     map[string]*bucket
	lastCleanup time.Time
}

// NewKeyed creates a keyed limiter. scope labels its rejection metric.
func NewKeyed(scope string, cfg Config) *Keyed {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	return &Keyed{
		cfg:         cfg,
		scope:       scope,
		buckets:     make(map[string]*bucket),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether the key may proceed, consuming one token if so.
func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := time.Now()
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.cfg.Rate, k.cfg.Burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now

	k.maybeCleanupLocked(now)

	if !b.limiter.Allow() {
		rejections.WithLabelValues(k.scope).Inc()
		return false
	}
	return true
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *Keyed) maybeCleanupLocked(now time.Time) {
	if now.Sub(k.lastCleanup) < k.cfg.CleanupInterval {
		return
	}
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) >= k.cfg.CleanupInterval {
			delete(k.buckets, key)
		}
	}
	k.lastCleanup = now
}

// LoginKey builds the throttle key for a login attempt. Keying on IP and
// email together keeps one noisy address from locking out an office NAT
// while still capping per-account guessing.
func LoginKey(ip, email string) string {
	return ip + "|" + domain.NormalizeEmail(email)
}

// ClientIP extracts the caller address. Forwarding headers are only
// honored when the direct peer is a trusted proxy.
func ClientIP(r *http.Request, trustProxy bool) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !trustProxy {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xri != "" {
		return xri
	}
	return host
}
