package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
)

type userCreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// userUpdateRequest is a partial update; nil fields are left untouched.
type userUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	users, total, err := s.store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse[domain.User]{
		Items: users, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := domain.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || !strings.Contains(email, "@") {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "a valid email is required")
		return
	}
	if name == "" {
		RespondError(w, r, http.StatusBadRequest, ErrValidation, "name is required")
		return
	}

	role := domain.RoleViewer
	if req.Role != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown role")
			return
		}
		role = parsed
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
			return
		}
		respondStoreError(w, r, err)
		return
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           domain.NewID(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(r.Context(), u); err != nil {
		respondStoreError(w, r, err)
		return
	}

	log.WithComponentFromContext(r.Context(), "api").Info().
		Str("event", "user.created").
		Str(log.FieldUserID, u.ID).
		Str(log.FieldRole, string(u.Role)).
		Msg("user account created")

	writeJSON(w, r, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		RespondError(w, r, http.StatusUnauthorized, ErrUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	if !p.Role.CanManageUsers() && p.UserID != id {
		RespondError(w, r, http.StatusForbidden, ErrForbidden)
		return
	}

	u, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	// Admins cannot demote or deactivate themselves; that path locks the
	// last admin out of the instance.
	if p.UserID == id && (req.Role != nil || req.Active != nil) {
		RespondError(w, r, http.StatusConflict, ErrConflict, "cannot change own role or active flag")
		return
	}

	u, err := s.store.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "name cannot be empty")
			return
		}
		u.Name = name
	}
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			RespondError(w, r, http.StatusBadRequest, ErrValidation, "unknown role")
			return
		}
		u.Role = role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	var newHash string
	if req.Password != nil {
		newHash, err = auth.HashPassword(*req.Password, s.cfg.Auth.BcryptCost)
		if err != nil {
			if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
				RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
				return
			}
			respondStoreError(w, r, err)
			return
		}
	}

	now := time.Now().UTC()
	u.UpdatedAt = now
	if err := s.store.UpdateUser(r.Context(), u); err != nil {
		respondStoreError(w, r, err)
		return
	}
	if newHash != "" {
		if err := s.store.UpdateUserPassword(r.Context(), u.ID, newHash, now); err != nil {
			respondStoreError(w, r, err)
			return
		}
	}

	// Deactivation and password changes both cut existing sessions loose.
	deactivated := req.Active != nil && !*req.Active
	if deactivated || newHash != "" {
		revoked, err := s.auth.RevokeUserSessions(r.Context(), u.ID)
		if err != nil {
			log.WithComponentFromContext(r.Context(), "api").Error().Err(err).
				Str(log.FieldUserID, u.ID).
				Msg("session revocation failed")
		} else if revoked > 0 {
			log.WithComponentFromContext(r.Context(), "api").Info().
				Str("event", "user.sessions_revoked").
				Str(log.FieldUserID, u.ID).
				Int("revoked", revoked).
				Msg("user sessions revoked")
		}
	}

	writeJSON(w, r, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if p.UserID == id {
		RespondError(w, r, http.StatusConflict, ErrConflict, "cannot delete own account")
		return
	}

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		respondStoreError(w, r, err)
		return
	}
	if _, err := s.auth.RevokeUserSessions(r.Context(), id); err != nil {
		log.WithComponentFromContext(r.Context(), "api").Error().Err(err).
			Str(log.FieldUserID, id).
			Msg("session revocation failed")
	}

	log.WithComponentFromContext(r.Context(), "api").Info().
		Str("event", "user.deleted").
		Str(log.FieldUserID, id).
		Msg("user account deleted")

	w.WriteHeader(http.StatusNoContent)
}
