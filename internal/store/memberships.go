package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

const membershipColumns = `id, donor_id, tier, status, auto_renew, started_at, expires_at, created_at, updated_at`

func scanMembership(row rowScanner) (*domain.Membership, error) {
	var (
		m       domain.Membership
		tier    string
		status  string
		started string
		expires string
		created string
		updated string
	)
	err := row.Scan(&m.ID, &m.DonorID, &tier, &status, &m.AutoRenew, &started, &expires, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan membership: %w", err)
	}
	m.Tier = domain.MembershipTier(tier)
	m.Status = domain.MembershipStatus(status)
	m.StartedAt = parseTime(started)
	m.ExpiresAt = parseTime(expires)
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	return &m, nil
}

func (s *Store) CreateMembership(ctx context.Context, m *domain.Membership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memberships (id, donor_id, tier, status, auto_renew, started_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.DonorID, string(m.Tier), string(m.Status), m.AutoRenew,
		formatTime(m.StartedAt), formatTime(m.ExpiresAt),
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: donor", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *Store) GetMembershipByID(ctx context.Context, id string) (*domain.Membership, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id)
	return scanMembership(row)
}

// MembershipFilter narrows ListMemberships. Zero values mean no filter.
type MembershipFilter struct {
	DonorID string
	Status  domain.MembershipStatus
	Tier    domain.MembershipTier
}

// ListMemberships pages memberships nearest expiry first.
func (s *Store) ListMemberships(ctx context.Context, f MembershipFilter, limit, offset int) ([]domain.Membership, int, error) {
	limit, offset = clampLimit(limit, offset)

	where := ` WHERE 1=1`
	args := []any{}
	if f.DonorID != "" {
		where += ` AND donor_id = ?`
		args = append(args, f.DonorID)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Tier != "" {
		where += ` AND tier = ?`
		args = append(args, string(f.Tier))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memberships`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count memberships: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+membershipColumns+` FROM memberships`+where+`
		ORDER BY expires_at ASC, id ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]domain.Membership, 0, limit)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, 0, err
		}
		memberships = append(memberships, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate memberships: %w", err)
	}
	return memberships, total, nil
}

// UpdateMembership persists tier and auto-renew changes.
func (s *Store) UpdateMembership(ctx context.Context, m *domain.Membership) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memberships SET tier = ?, auto_renew = ?, updated_at = ?
		WHERE id = ?`,
		string(m.Tier), m.AutoRenew, formatTime(m.UpdatedAt), m.ID,
	)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	return requireRowChange(res, "membership")
}

// RenewMembership extends the expiry by one period and reactivates lapsed
// memberships. Cancelled memberships cannot renew.
func (s *Store) RenewMembership(ctx context.Context, id string, now time.Time) (*domain.Membership, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin renew: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id)
	m, err := scanMembership(row)
	if err != nil {
		return nil, err
	}
	if m.Status == domain.MembershipCancelled {
		return nil, fmt.Errorf("%w: membership is cancelled", ErrConflict)
	}

	expires := m.RenewedUntil(now)
	if _, err := tx.ExecContext(ctx, `
		UPDATE memberships SET status = ?, expires_at = ?, updated_at = ? WHERE id = ?`,
		string(domain.MembershipActive), formatTime(expires), formatTime(now), id); err != nil {
		return nil, fmt.Errorf("renew membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit renew: %w", err)
	}

	m.Status = domain.MembershipActive
	m.ExpiresAt = expires
	m.UpdatedAt = now
	return m, nil
}

// CancelMembership marks a membership cancelled. Terminal.
func (s *Store) CancelMembership(ctx context.Context, id string, now time.Time) (*domain.Membership, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id)
	m, err := scanMembership(row)
	if err != nil {
		return nil, err
	}
	if !m.Status.CanTransition(domain.MembershipCancelled) {
		return nil, fmt.Errorf("%w: membership is already cancelled", ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE memberships SET status = ?, updated_at = ? WHERE id = ?`,
		string(domain.MembershipCancelled), formatTime(now), id); err != nil {
		return nil, fmt.Errorf("cancel membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}

	m.Status = domain.MembershipCancelled
	m.UpdatedAt = now
	return m, nil
}

// ListExpiringMemberships returns active memberships whose expiry is at or
// before the cutoff. The sweep job feeds each through renewal or lapse.
func (s *Store) ListExpiringMemberships(ctx context.Context, cutoff time.Time) ([]domain.Membership, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+membershipColumns+` FROM memberships
		WHERE status = ? AND expires_at <= ?
		ORDER BY expires_at ASC`,
		string(domain.MembershipActive), formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("list expiring memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiring memberships: %w", err)
	}
	return memberships, nil
}

// LapseMembership marks an expired membership lapsed.
func (s *Store) LapseMembership(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memberships SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.MembershipLapsed), formatTime(now), id, string(domain.MembershipActive))
	if err != nil {
		return fmt.Errorf("lapse membership: %w", err)
	}
	return requireRowChange(res, "membership")
}
