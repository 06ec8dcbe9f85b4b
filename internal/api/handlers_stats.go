package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/causewayhq/causeway/internal/cache"
)

// handleStatsSummary serves the dashboard aggregates. The cache entry is
// shared with the background refresh job, which primes the same key.
func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if body, ok := s.cache.Get(ctx, cache.KeySummary); ok {
		serveCachedJSON(w, body)
		return
	}

	summary, err := s.store.GetDashboardSummary(ctx, time.Now().UTC())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if body, err := json.Marshal(summary); err == nil {
		s.cache.Set(ctx, cache.KeySummary, body, s.cacheTTL)
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// invalidateStats drops every cached aggregate. Any write that can move a
// dashboard number calls this; the next read recomputes.
func (s *Server) invalidateStats(ctx context.Context) {
	s.cache.DeletePrefix(ctx, cache.StatsPrefix)
}

// serveCachedJSON replays cached response bytes.
func serveCachedJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
