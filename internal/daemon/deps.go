package daemon

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Deps contains the dependencies the Manager serves. Keeping them explicit
// makes the wiring in cmd/causewayd testable.
type Deps struct {
	// Logger is the structured logger for the daemon.
	Logger zerolog.Logger

	// APIHandler is the HTTP handler for the API server.
	APIHandler http.Handler

	// MetricsHandler serves Prometheus metrics on the separate metrics
	// listener. Nil disables the metrics server regardless of config.
	MetricsHandler http.Handler
}

// Validate checks that the required dependencies are present.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
