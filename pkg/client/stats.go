package client

import (
	"context"
	"net/http"
)

// StatsService serves the dashboard aggregates.
type StatsService struct {
	c *Client
}

// Summary returns the organization-wide dashboard numbers.
func (s *StatsService) Summary(ctx context.Context) (*DashboardSummary, error) {
	var sum DashboardSummary
	if err := s.c.doJSON(ctx, http.MethodGet, "/stats/summary", nil, nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}
