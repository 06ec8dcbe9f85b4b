package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/metrics"
	"github.com/causewayhq/causeway/internal/ratelimit"
	"github.com/causewayhq/causeway/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// authResponse bundles the signed-in user with a fresh token pair.
type authResponse struct {
	User *domain.User `json:"user"`
	*auth.TokenPair
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateRegistration(req); msg != "" {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, msg)
		return
	}

	u, pair, err := s.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case errors.Is(err, auth.ErrRegistrationClosed):
		metrics.RecordAuthAttempt("register", false)
		RespondError(w, r, http.StatusForbidden, ErrRegistrationClosed)
		return
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		metrics.RecordAuthAttempt("register", false)
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return
	case errors.Is(err, store.ErrConflict):
		metrics.RecordAuthAttempt("register", false)
		RespondError(w, r, http.StatusConflict, ErrConflict, "email is already registered")
		return
	case err != nil:
		metrics.RecordAuthAttempt("register", false)
		respondStoreError(w, r, err)
		return
	}

	metrics.RecordAuthAttempt("register", true)
	writeJSON(w, r, http.StatusCreated, authResponse{User: u, TokenPair: pair})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ip := ratelimit.ClientIP(r, s.trustProxy)
	if !s.loginLimiter.Allow(ratelimit.LoginKey(ip, req.Email)) {
		metrics.RecordAuthAttempt("login", false)
		w.Header().Set("Retry-After", "60")
		RespondError(w, r, http.StatusTooManyRequests, ErrRateLimited)
		return
	}

	u, pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.RecordAuthAttempt("login", false)
		RespondError(w, r, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	case errors.Is(err, auth.ErrUserInactive):
		metrics.RecordAuthAttempt("login", false)
		RespondError(w, r, http.StatusForbidden, ErrForbidden, "account is deactivated")
		return
	case err != nil:
		metrics.RecordAuthAttempt("login", false)
		respondStoreError(w, r, err)
		return
	}

	metrics.RecordAuthAttempt("login", true)
	writeJSON(w, r, http.StatusOK, authResponse{User: u, TokenPair: pair})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "refresh_token is required")
		return
	}

	u, pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, auth.ErrSessionExpired), errors.Is(err, auth.ErrUserInactive):
		metrics.RecordAuthAttempt("refresh", false)
		RespondError(w, r, http.StatusUnauthorized, ErrInvalidToken)
		return
	case err != nil:
		metrics.RecordAuthAttempt("refresh", false)
		respondStoreError(w, r, err)
		return
	}

	metrics.RecordAuthAttempt("refresh", true)
	writeJSON(w, r, http.StatusOK, authResponse{User: u, TokenPair: pair})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		respondStoreError(w, r, err)
		return
	}
	metrics.RecordAuthAttempt("logout", true)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		RespondError(w, r, http.StatusUnauthorized, ErrUnauthorized)
		return
	}

	u, err := s.store.GetUserByID(r.Context(), p.UserID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, u)
}

func validateRegistration(req registerRequest) string {
	switch {
	case strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@"):
		return "a valid email is required"
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case req.Password == "":
		return "password is required"
	default:
		return ""
	}
}
