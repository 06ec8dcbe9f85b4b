package client

import (
	"context"
	"net/http"
)

// AuthService signs users in and out and manages the stored token pair.
type AuthService struct {
	c *Client
}

// Register creates an account and signs it in. The first account on a fresh
// deployment becomes the admin; later registrations depend on the server's
// registration policy.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	in := map[string]string{"email": email, "name": name, "password": password}
	var session Session
	if err := s.c.public(ctx, http.MethodPost, "/auth/register", in, &session); err != nil {
		return nil, err
	}
	s.c.SetTokens(session.TokenPair)
	return &session, nil
}

// Login exchanges credentials for a token pair and stores it on the client.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	in := map[string]string{"email": email, "password": password}
	var session Session
	if err := s.c.public(ctx, http.MethodPost, "/auth/login", in, &session); err != nil {
		return nil, err
	}
	s.c.SetTokens(session.TokenPair)
	return &session, nil
}

// Logout revokes the stored refresh token server-side and clears the local
// pair. The local pair is cleared even when the server call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	pair := s.c.Tokens()
	defer s.c.clearTokens()
	if pair.RefreshToken == "" {
		return nil
	}
	in := map[string]string{"refresh_token": pair.RefreshToken}
	return s.c.public(ctx, http.MethodPost, "/auth/logout", in, nil)
}

// Me returns the account behind the current access token.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
