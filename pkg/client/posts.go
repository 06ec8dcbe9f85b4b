package client

import (
	"context"
	"net/http"
	"net/url"
)

// PostsService manages news posts.
type PostsService struct {
	c *Client
}

// PostParams is the create and update payload for a post. On update, Status
// may archive or restore a post; publishing goes through Publish.
type PostParams struct {
	Title   string   `json:"title"`
	Slug    string   `json:"slug,omitempty"`
	Body    string   `json:"body"`
	Excerpt string   `json:"excerpt,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Status  string   `json:"status,omitempty"`
}

// PostListOptions filters the post collection.
type PostListOptions struct {
	ListOptions
	Status PostStatus
}

func (o PostListOptions) values() url.Values {
	v := o.ListOptions.values()
	if o.Status != "" {
		v.Set("status", string(o.Status))
	}
	return v
}

func (s *PostsService) List(ctx context.Context, opts PostListOptions) (*Page[Post], error) {
	var page Page[Post]
	if err := s.c.doJSON(ctx, http.MethodGet, "/posts", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Create creates a draft. The author is the calling user.
func (s *PostsService) Create(ctx context.Context, params PostParams) (*Post, error) {
	var p Post
	if err := s.c.doJSON(ctx, http.MethodPost, "/posts", nil, params, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostsService) Get(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := s.c.doJSON(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostsService) Update(ctx context.Context, id string, params PostParams) (*Post, error) {
	var p Post
	if err := s.c.doJSON(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), nil, params, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostsService) Delete(ctx context.Context, id string) error {
	return s.c.doJSON(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, nil)
}

// Publish makes a draft live and stamps published_at on first publication.
func (s *PostsService) Publish(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := s.c.doJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/publish", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
