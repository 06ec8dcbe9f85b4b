package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_http_requests_total",
		Help: "Total number of HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "causeway_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "causeway_http_requests_in_flight",
		Help: "Number of HTTP requests currently being served",
	})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "causeway_http_response_size_bytes",
		Help:    "HTTP response body size by route",
		Buckets: []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
	}, []string{"route"})

	authAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_auth_attempts_total",
		Help: "Authentication attempts by kind and outcome",
	}, []string{"kind", "outcome"}) // kind=login|refresh|register, outcome=success|failure

	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causeway_http_rate_limited_total",
		Help: "Requests rejected with 429 by route",
	}, []string{"route"})
)

// RecordHTTPRequest records one completed request. The route is the chi
// pattern, not the raw URL, so cardinality stays bounded.
func RecordHTTPRequest(route, method string, status int, duration time.Duration, responseBytes int) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(route, method, code).Inc()
	httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
	if responseBytes > 0 {
		httpResponseSize.WithLabelValues(route).Observe(float64(responseBytes))
	}
}

func IncHTTPInFlight() { httpRequestsInFlight.Inc() }
func DecHTTPInFlight() { httpRequestsInFlight.Dec() }

func RecordAuthAttempt(kind string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	authAttemptsTotal.WithLabelValues(normalizeAuthKind(kind), outcome).Inc()
}

func IncRateLimited(route string) { rateLimitedTotal.WithLabelValues(route).Inc() }

func normalizeAuthKind(kind string) string {
	switch kind {
	case "login", "refresh", "register", "logout":
		return kind
	default:
		return "unknown"
	}
}
