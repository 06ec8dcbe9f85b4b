package store

import (
	"context"
	"fmt"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

// DashboardSummary is the aggregate block behind the stats endpoint.
type DashboardSummary struct {
	TotalRaisedCents   int64 `json:"total_raised_cents"`
	DonationCount      int   `json:"donation_count"`
	DonorCount         int   `json:"donor_count"`
	RaisedLast30dCents int64 `json:"raised_last_30d_cents"`
	ActiveCampaigns    int   `json:"active_campaigns"`
	ActiveVolunteers   int   `json:"active_volunteers"`
	ActiveMemberships  int   `json:"active_memberships"`
	UpcomingEvents     int   `json:"upcoming_events"`
	PublishedPosts     int   `json:"published_posts"`
}

// GetDashboardSummary computes organization-wide aggregates in one pass per
// table. Completed donations only; refunds and pending amounts are excluded.
func (s *Store) GetDashboardSummary(ctx context.Context, now time.Time) (*DashboardSummary, error) {
	var sum DashboardSummary

	since := formatTime(now.Add(-30 * 24 * time.Hour))
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount_cents), 0),
			COUNT(*),
			COUNT(DISTINCT donor_id),
			COALESCE(SUM(CASE WHEN received_at >= ? THEN amount_cents ELSE 0 END), 0)
		FROM donations WHERE status = 'completed'`, since).
		Scan(&sum.TotalRaisedCents, &sum.DonationCount, &sum.DonorCount, &sum.RaisedLast30dCents)
	if err != nil {
		return nil, fmt.Errorf("donation summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns WHERE status = ?`,
		string(domain.CampaignActive)).Scan(&sum.ActiveCampaigns)
	if err != nil {
		return nil, fmt.Errorf("campaign summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM volunteers WHERE status = ?`,
		string(domain.VolunteerActive)).Scan(&sum.ActiveVolunteers)
	if err != nil {
		return nil, fmt.Errorf("volunteer summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memberships WHERE status = ?`,
		string(domain.MembershipActive)).Scan(&sum.ActiveMemberships)
	if err != nil {
		return nil, fmt.Errorf("membership summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE status = ? AND starts_at >= ?`,
		string(domain.EventScheduled), formatTime(now)).Scan(&sum.UpcomingEvents)
	if err != nil {
		return nil, fmt.Errorf("event summary: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status = ?`,
		string(domain.PostPublished)).Scan(&sum.PublishedPosts)
	if err != nil {
		return nil, fmt.Errorf("post summary: %w", err)
	}

	return &sum, nil
}

// ListActiveCampaignsPastEnd returns active campaigns whose end date passed.
// The completion sweep moves each to completed.
func (s *Store) ListActiveCampaignsPastEnd(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns c
		WHERE c.status = ? AND c.ends_at IS NOT NULL AND c.ends_at <= ?
		ORDER BY c.ends_at ASC`,
		string(domain.CampaignActive), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("list ended campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ended campaigns: %w", err)
	}
	return campaigns, nil
}
