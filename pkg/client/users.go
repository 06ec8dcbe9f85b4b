package client

import (
	"context"
	"net/http"
	"net/url"
)

// UsersService administers staff accounts. Every method except Get on the
// caller's own ID requires the admin role.
type UsersService struct {
	c *Client
}

// UserCreateParams is the create payload for a user account.
type UserCreateParams struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // defaults to viewer
}

// UserUpdateParams is a partial update; nil fields are left untouched.
// Changing the password or deactivating revokes the user's sessions.
type UserUpdateParams struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (s *UsersService) List(ctx context.Context, opts ListOptions) (*Page[User], error) {
	var page Page[User]
	if err := s.c.doJSON(ctx, http.MethodGet, "/users", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *UsersService) Create(ctx context.Context, params UserCreateParams) (*User, error) {
	var u User
	if err := s.c.doJSON(ctx, http.MethodPost, "/users", nil, params, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Update(ctx context.Context, id string, params UserUpdateParams) (*User, error) {
	var u User
	if err := s.c.doJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, params, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UsersService) Delete(ctx context.Context, id string) error {
	return s.c.doJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}
