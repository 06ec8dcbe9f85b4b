package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/causewayhq/causeway/internal/domain"
)

const volunteerColumns = `id, email, name, phone, skills, status, joined_at, created_at, updated_at`

func scanVolunteer(row rowScanner) (*domain.Volunteer, error) {
	var (
		v       domain.Volunteer
		skills  string
		status  string
		joined  sql.NullString
		created string
		updated string
	)
	err := row.Scan(&v.ID, &v.Email, &v.Name, &v.Phone, &skills, &status, &joined, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan volunteer: %w", err)
	}
	if err := json.Unmarshal([]byte(skills), &v.Skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	v.Status = domain.VolunteerStatus(status)
	v.JoinedAt = parseNullableTime(joined)
	v.CreatedAt = parseTime(created)
	v.UpdatedAt = parseTime(updated)
	return &v, nil
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}
	return string(b), nil
}

func (s *Store) CreateVolunteer(ctx context.Context, v *domain.Volunteer) error {
	skills, err := encodeSkills(v.Skills)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO volunteers (id, email, name, phone, skills, status, joined_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Email, v.Name, v.Phone, skills, string(v.Status),
		formatNullableTime(v.JoinedAt), formatTime(v.CreatedAt), formatTime(v.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: volunteer email already exists", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert volunteer: %w", err)
	}
	return nil
}

func (s *Store) GetVolunteerByID(ctx context.Context, id string) (*domain.Volunteer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+volunteerColumns+` FROM volunteers WHERE id = ?`, id)
	return scanVolunteer(row)
}

// ListVolunteers pages volunteers by name, optionally filtered by status.
func (s *Store) ListVolunteers(ctx context.Context, status domain.VolunteerStatus, limit, offset int) ([]domain.Volunteer, int, error) {
	limit, offset = clampLimit(limit, offset)

	where := ``
	args := []any{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, string(status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM volunteers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count volunteers: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+volunteerColumns+` FROM volunteers`+where+`
		ORDER BY name ASC, id ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list volunteers: %w", err)
	}
	defer rows.Close()

	volunteers := make([]domain.Volunteer, 0, limit)
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, 0, err
		}
		volunteers = append(volunteers, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate volunteers: %w", err)
	}
	return volunteers, total, nil
}

func (s *Store) UpdateVolunteer(ctx context.Context, v *domain.Volunteer) error {
	skills, err := encodeSkills(v.Skills)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE volunteers SET email = ?, name = ?, phone = ?, skills = ?, updated_at = ?
		WHERE id = ?`,
		v.Email, v.Name, v.Phone, skills, formatTime(v.UpdatedAt), v.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: volunteer email already exists", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update volunteer: %w", err)
	}
	return requireRowChange(res, "volunteer")
}

// UpdateVolunteerStatus moves a volunteer between engagement states. The
// first activation stamps joined_at.
func (s *Store) UpdateVolunteerStatus(ctx context.Context, id string, next domain.VolunteerStatus) (*domain.Volunteer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+volunteerColumns+` FROM volunteers WHERE id = ?`, id)
	v, err := scanVolunteer(row)
	if err != nil {
		return nil, err
	}
	if !v.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: volunteer cannot move from %s to %s", ErrConflict, v.Status, next)
	}

	now := time.Now().UTC()
	if next == domain.VolunteerActive && v.JoinedAt == nil {
		v.JoinedAt = &now
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE volunteers SET status = ?, joined_at = ?, updated_at = ? WHERE id = ?`,
		string(next), formatNullableTime(v.JoinedAt), formatTime(now), id); err != nil {
		return nil, fmt.Errorf("update volunteer status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	v.Status = next
	v.UpdatedAt = now
	return v, nil
}

func (s *Store) DeleteVolunteer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM volunteers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete volunteer: %w", err)
	}
	return requireRowChange(res, "volunteer")
}
