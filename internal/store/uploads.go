package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/causewayhq/causeway/internal/domain"
)

const uploadColumns = `id, name, stored_name, content_type, size_bytes, sha256, uploaded_by, created_at`

func scanUpload(row rowScanner) (*domain.Upload, error) {
	var (
		u       domain.Upload
		created string
	)
	err := row.Scan(&u.ID, &u.Name, &u.StoredName, &u.ContentType, &u.SizeBytes,
		&u.SHA256, &u.UploadedBy, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func (s *Store) CreateUpload(ctx context.Context, u *domain.Upload) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, name, stored_name, content_type, size_bytes, sha256, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.StoredName, u.ContentType, u.SizeBytes, u.SHA256, u.UploadedBy,
		formatTime(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: stored name already exists", ErrConflict)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: uploader", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (s *Store) GetUploadByID(ctx context.Context, id string) (*domain.Upload, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, id)
	return scanUpload(row)
}

func (s *Store) GetUploadByStoredName(ctx context.Context, storedName string) (*domain.Upload, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE stored_name = ?`, storedName)
	return scanUpload(row)
}

// ListUploads pages upload records newest first.
func (s *Store) ListUploads(ctx context.Context, limit, offset int) ([]domain.Upload, int, error) {
	limit, offset = clampLimit(limit, offset)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count uploads: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+uploadColumns+` FROM uploads
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	uploads := make([]domain.Upload, 0, limit)
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, 0, err
		}
		uploads = append(uploads, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate uploads: %w", err)
	}
	return uploads, total, nil
}

// DeleteUpload removes the metadata row. Callers delete the file afterwards
// so a crash leaves an orphaned file, never a dangling row.
func (s *Store) DeleteUpload(ctx context.Context, id string) (*domain.Upload, error) {
	u, err := s.GetUploadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("delete upload: %w", err)
	}
	if err := requireRowChange(res, "upload"); err != nil {
		return nil, err
	}
	return u, nil
}
