package domain

import (
	"fmt"
	"time"
)

// PostStatus is the publication state of a content post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

// IsValid checks if the status is known.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostDraft, PostPublished, PostArchived:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the status may move to next.
func (s PostStatus) CanTransition(next PostStatus) bool {
	switch s {
	case PostDraft:
		return next == PostPublished || next == PostArchived
	case PostPublished:
		return next == PostArchived
	case PostArchived:
		return next == PostDraft
	default:
		return false
	}
}

// Post is a news or update article shown on the public site.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Excerpt     string     `json:"excerpt,omitempty"`
	AuthorID    string     `json:"author_id"`
	Status      PostStatus `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks invariants on a post before it is written.
func (p Post) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("post: title is required")
	}
	if p.AuthorID == "" {
		return fmt.Errorf("post: author_id is required")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("post: unknown status %q", p.Status)
	}
	return nil
}
