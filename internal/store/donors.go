package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/causewayhq/causeway/internal/domain"
)

// donorColumns includes per-donor aggregates over completed donations so a
// single read carries totals without a second round trip.
const donorColumns = `
	d.id, d.email, d.name, d.phone, d.address, d.notes, d.created_at, d.updated_at,
	(SELECT COALESCE(SUM(amount_cents), 0) FROM donations WHERE donor_id = d.id AND status = 'completed'),
	(SELECT COUNT(*) FROM donations WHERE donor_id = d.id AND status = 'completed'),
	(SELECT MAX(received_at) FROM donations WHERE donor_id = d.id AND status = 'completed')`

func scanDonor(row rowScanner) (*domain.Donor, error) {
	var (
		d       domain.Donor
		created string
		updated string
		last    sql.NullString
	)
	err := row.Scan(&d.ID, &d.Email, &d.Name, &d.Phone, &d.Address, &d.Notes,
		&created, &updated, &d.TotalDonatedCents, &d.DonationCount, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan donor: %w", err)
	}
	d.CreatedAt = parseTime(created)
	d.UpdatedAt = parseTime(updated)
	d.LastDonationAt = parseNullableTime(last)
	return &d, nil
}

func (s *Store) CreateDonor(ctx context.Context, d *domain.Donor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donors (id, email, name, phone, address, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Email, d.Name, d.Phone, d.Address, d.Notes,
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: donor email already exists", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert donor: %w", err)
	}
	return nil
}

func (s *Store) GetDonorByID(ctx context.Context, id string) (*domain.Donor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+donorColumns+` FROM donors d WHERE d.id = ?`, id)
	return scanDonor(row)
}

func (s *Store) GetDonorByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+donorColumns+` FROM donors d WHERE d.email = ?`,
		domain.NormalizeEmail(email))
	return scanDonor(row)
}

// ListDonors pages donors ordered by name. A non-empty query filters on a
// case-insensitive substring match against name and email.
func (s *Store) ListDonors(ctx context.Context, query string, limit, offset int) ([]domain.Donor, int, error) {
	limit, offset = clampLimit(limit, offset)

	where := ``
	args := []any{}
	if query != "" {
		where = ` WHERE (d.name LIKE ? OR d.email LIKE ?)`
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM donors d`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count donors: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+donorColumns+` FROM donors d`+where+`
		ORDER BY d.name ASC, d.id ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	donors := make([]domain.Donor, 0, limit)
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, 0, err
		}
		donors = append(donors, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate donors: %w", err)
	}
	return donors, total, nil
}

func (s *Store) UpdateDonor(ctx context.Context, d *domain.Donor) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE donors SET email = ?, name = ?, phone = ?, address = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		d.Email, d.Name, d.Phone, d.Address, d.Notes, formatTime(d.UpdatedAt), d.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: donor email already exists", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update donor: %w", err)
	}
	return requireRowChange(res, "donor")
}

// DeleteDonor removes a donor without recorded donations or memberships.
// Foreign keys protect donors with history, surfaced as ErrConflict.
func (s *Store) DeleteDonor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM donors WHERE id = ?`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: donor has recorded history", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	return requireRowChange(res, "donor")
}
