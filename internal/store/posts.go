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

const postColumns = `id, title, slug, body, excerpt, author_id, status, published_at, tags, created_at, updated_at`

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		p         domain.Post
		status    string
		published sql.NullString
		tags      string
		created   string
		updated   string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.AuthorID,
		&status, &published, &tags, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	p.Status = domain.PostStatus(status)
	p.PublishedAt = parseNullableTime(published)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	if p.Slug == "" {
		slug, err := s.uniqueSlug(ctx, "posts", domain.Slugify(p.Title))
		if err != nil {
			return err
		}
		p.Slug = slug
	}
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, slug, body, excerpt, author_id, status, published_at, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Body, p.Excerpt, p.AuthorID, string(p.Status),
		formatNullableTime(p.PublishedAt), tags,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: post slug already exists", ErrConflict)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: author", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return scanPost(row)
}

// ListPosts pages posts newest first, optionally filtered by status.
func (s *Store) ListPosts(ctx context.Context, status domain.PostStatus, limit, offset int) ([]domain.Post, int, error) {
	limit, offset = clampLimit(limit, offset)

	where := ``
	args := []any{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, string(status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts`+where+`
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, total, nil
}

func (s *Store) UpdatePost(ctx context.Context, p *domain.Post) error {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, body = ?, excerpt = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Body, p.Excerpt, tags, formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return requireRowChange(res, "post")
}

// PublishPost moves a draft to published and stamps published_at once.
// Republishing after archive keeps the original timestamp.
func (s *Store) PublishPost(ctx context.Context, id string, now time.Time) (*domain.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin publish: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransition(domain.PostPublished) {
		return nil, fmt.Errorf("%w: post is %s", ErrConflict, p.Status)
	}
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE posts SET status = ?, published_at = ?, updated_at = ? WHERE id = ?`,
		string(domain.PostPublished), formatNullableTime(p.PublishedAt), formatTime(now), id); err != nil {
		return nil, fmt.Errorf("publish post: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit publish: %w", err)
	}

	p.Status = domain.PostPublished
	p.UpdatedAt = now
	return p, nil
}

// UpdatePostStatus archives or restores a post with transition checks.
func (s *Store) UpdatePostStatus(ctx context.Context, id string, next domain.PostStatus) (*domain.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: post cannot move from %s to %s", ErrConflict, p.Status, next)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE posts SET status = ?, updated_at = ? WHERE id = ?`,
		string(next), formatTime(now), id); err != nil {
		return nil, fmt.Errorf("update post status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}

	p.Status = next
	p.UpdatedAt = now
	return p, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireRowChange(res, "post")
}
