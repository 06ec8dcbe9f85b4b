package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/store"
)

// Config carries the knobs the auth service needs.
type Config struct {
	JWTSecret        []byte
	Issuer           string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	BcryptCost       int
	RegistrationOpen bool
}

// TokenPair is what login, register and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service implements registration, login and the refresh token lifecycle.
type Service struct {
	store    *store.Store
	sessions *SessionStore
	tokens   *TokenIssuer
	cfg      Config

	// dummyHash is compared when the account does not exist so login cost
	// does not reveal which emails are registered.
	dummyHash []byte

	logger zerolog.Logger
}

func NewService(st *store.Store, sessions *SessionStore, cfg Config) (*Service, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("auth: jwt secret is empty")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("causeway-dummy-password"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &Service{
		store:     st,
		sessions:  sessions,
		tokens:    NewTokenIssuer(cfg.JWTSecret, cfg.Issuer, cfg.AccessTokenTTL),
		cfg:       cfg,
		dummyHash: dummy,
		logger:    log.WithComponent("auth"),
	}, nil
}

// Tokens exposes the issuer for the API middleware.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Register creates an account and signs it in. The first account ever
// registered becomes admin and may register even when registration is
// closed; everyone after that starts as viewer.
func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.User, *TokenPair, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	if count > 0 && !s.cfg.RegistrationOpen {
		return nil, nil, ErrRegistrationClosed
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           domain.NewID(),
		Email:        domain.NormalizeEmail(email),
		Name:         name,
		Role:         domain.RoleViewer,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.RegisterUser(ctx, u); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, u, now)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("event", "auth.registered").
		Str(log.FieldUserID, u.ID).
		Str(log.FieldRole, string(u.Role)).
		Msg("account registered")
	return u, pair, nil
}

// Login verifies credentials and opens a new session. The bcrypt compare
// runs even for unknown emails so both paths cost the same.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if !CheckPassword(u.PasswordHash, password) {
		s.logger.Warn().
			Str("event", "auth.login_failed").
			Str(log.FieldUserID, u.ID).
			Msg("wrong password")
		return nil, nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, nil, ErrUserInactive
	}

	now := time.Now().UTC()
	pair, err := s.issuePair(ctx, u, now)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("event", "auth.login").
		Str(log.FieldUserID, u.ID).
		Msg("login")
	return u, pair, nil
}

// Refresh rotates a refresh token: the old session is consumed atomically
// and a fresh pair is issued. Reusing a consumed token fails with
// ErrSessionExpired, which also voids any session stolen via replay.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	sess, err := s.sessions.Consume(ctx, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	u, err := s.store.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrSessionExpired
	}
	if err != nil {
		return nil, nil, err
	}
	if !u.Active {
		return nil, nil, ErrUserInactive
	}

	now := time.Now().UTC()
	pair, err := s.issuePair(ctx, u, now)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug().
		Str("event", "auth.refreshed").
		Str(log.FieldUserID, u.ID).
		Msg("session rotated")
	return u, pair, nil
}

// Logout ends the session for a refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Delete(ctx, refreshToken)
}

// RevokeUserSessions ends every session of one user, for deactivation.
func (s *Service) RevokeUserSessions(ctx context.Context, userID string) (int, error) {
	return s.sessions.DeleteAllForUser(ctx, userID)
}

func (s *Service) issuePair(ctx context.Context, u *domain.User, now time.Time) (*TokenPair, error) {
	access, err := s.tokens.Issue(u, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}
