package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

// campaignColumns carries aggregates over completed donations alongside the
// stored row, matching the donor read path.
const campaignColumns = `
	c.id, c.title, c.slug, c.description, c.goal_cents, c.status, c.starts_at, c.ends_at,
	c.created_at, c.updated_at,
	(SELECT COALESCE(SUM(amount_cents), 0) FROM donations WHERE campaign_id = c.id AND status = 'completed'),
	(SELECT COUNT(DISTINCT donor_id) FROM donations WHERE campaign_id = c.id AND status = 'completed')`

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var (
		c       domain.Campaign
		status  string
		starts  string
		ends    sql.NullString
		created string
		updated string
	)
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.GoalCents, &status,
		&starts, &ends, &created, &updated, &c.RaisedCents, &c.DonorCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	c.Status = domain.CampaignStatus(status)
	c.StartsAt = parseTime(starts)
	c.EndsAt = parseNullableTime(ends)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}

// CreateCampaign inserts a campaign, deriving a unique slug from the title
// when none is set.
func (s *Store) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	if c.Slug == "" {
		slug, err := s.uniqueSlug(ctx, "campaigns", domain.Slugify(c.Title))
		if err != nil {
			return err
		}
		c.Slug = slug
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, title, slug, description, goal_cents, status, starts_at, ends_at,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Slug, c.Description, c.GoalCents, string(c.Status),
		formatTime(c.StartsAt), formatNullableTime(c.EndsAt),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: campaign slug already exists", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (s *Store) GetCampaignByID(ctx context.Context, id string) (*domain.Campaign, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id = ?`, id)
	return scanCampaign(row)
}

func (s *Store) GetCampaignBySlug(ctx context.Context, slug string) (*domain.Campaign, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.slug = ?`, slug)
	return scanCampaign(row)
}

// ListCampaigns pages campaigns newest first, optionally filtered by status.
func (s *Store) ListCampaigns(ctx context.Context, status domain.CampaignStatus, limit, offset int) ([]domain.Campaign, int, error) {
	limit, offset = clampLimit(limit, offset)

	where := ``
	args := []any{}
	if status != "" {
		where = ` WHERE c.status = ?`
		args = append(args, string(status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns c`+where+`
		ORDER BY c.starts_at DESC, c.id ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]domain.Campaign, 0, limit)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate campaigns: %w", err)
	}
	return campaigns, total, nil
}

func (s *Store) UpdateCampaign(ctx context.Context, c *domain.Campaign) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE campaigns SET title = ?, description = ?, goal_cents = ?, starts_at = ?, ends_at = ?, updated_at = ?
		WHERE id = ?`,
		c.Title, c.Description, c.GoalCents,
		formatTime(c.StartsAt), formatNullableTime(c.EndsAt), formatTime(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireRowChange(res, "campaign")
}

// UpdateCampaignStatus moves a campaign through its lifecycle. Illegal
// transitions return ErrConflict.
func (s *Store) UpdateCampaignStatus(ctx context.Context, id string, next domain.CampaignStatus) (*domain.Campaign, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns c WHERE c.id = ?`, id)
	c, err := scanCampaign(row)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: campaign cannot move from %s to %s", ErrConflict, c.Status, next)
	}

	now := formatTime(time.Now().UTC())
	if _, err := tx.ExecContext(ctx, `UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ?`,
		string(next), now, id); err != nil {
		return nil, fmt.Errorf("update campaign status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	c.Status = next
	c.UpdatedAt = parseTime(now)
	return c, nil
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: campaign has donations or events", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireRowChange(res, "campaign")
}

// CampaignStats is the aggregate block behind the campaign stats endpoint.
type CampaignStats struct {
	CampaignID       string  `json:"campaign_id"`
	RaisedCents      int64   `json:"raised_cents"`
	GoalCents        int64   `json:"goal_cents"`
	Progress         float64 `json:"progress"`
	DonationCount    int     `json:"donation_count"`
	DonorCount       int     `json:"donor_count"`
	AverageCents     int64   `json:"average_cents"`
	LargestCents     int64   `json:"largest_cents"`
	RefundedCents    int64   `json:"refunded_cents"`
	PendingDonations int     `json:"pending_donations"`
}

// GetCampaignStats aggregates donation totals for one campaign.
func (s *Store) GetCampaignStats(ctx context.Context, id string) (*CampaignStats, error) {
	c, err := s.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}

	st := CampaignStats{
		CampaignID:  c.ID,
		RaisedCents: c.RaisedCents,
		GoalCents:   c.GoalCents,
		Progress:    c.Progress(),
		DonorCount:  c.DonorCount,
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(CASE WHEN status = 'completed' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN status = 'refunded' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0)
		FROM donations WHERE campaign_id = ?`, id).
		Scan(&st.DonationCount, &st.LargestCents, &st.RefundedCents, &st.PendingDonations)
	if err != nil {
		return nil, fmt.Errorf("campaign stats: %w", err)
	}
	if st.DonationCount > 0 {
		st.AverageCents = st.RaisedCents / int64(st.DonationCount)
	}
	return &st, nil
}
