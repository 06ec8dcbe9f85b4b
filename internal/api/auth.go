package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/log"
)

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate verifies the bearer token and attaches the caller as a
// Principal. Missing tokens are 401 UNAUTHORIZED; bad or expired ones are
// 401 INVALID_TOKEN so clients know a refresh may help.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			RespondError(w, r, http.StatusUnauthorized, ErrUnauthorized)
			return
		}

		claims, err := s.auth.Tokens().Verify(token)
		if err != nil {
			if !errors.Is(err, auth.ErrTokenExpired) {
				logger := log.WithComponentFromContext(r.Context(), "api")
				logger.Warn().
					Str("event", "auth.token_rejected").
					Msg("bearer token failed verification")
			}
			RespondError(w, r, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		role, ok := domain.ParseRole(claims.Role)
		if !ok {
			RespondError(w, r, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		p := auth.Principal{
			UserID: claims.Subject,
			Email:  claims.Email,
			Role:   role,
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// requireWrite gates handlers behind staff or admin.
func (s *Server) requireWrite(next http.Handler) http.Handler {
	return s.require(func(role domain.Role) bool { return role.CanWrite() }, next)
}

// requireAdmin gates handlers behind admin.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.require(func(role domain.Role) bool { return role.CanManageUsers() }, next)
}

func (s *Server) require(allowed func(domain.Role) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			RespondError(w, r, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		if !allowed(p.Role) {
			logger := log.WithComponentFromContext(r.Context(), "authz")
			logger.Warn().
				Str("event", "auth.denied").
				Str(log.FieldUserID, p.UserID).
				Str(log.FieldRole, string(p.Role)).
				Str(log.FieldPath, r.URL.Path).
				Msg("insufficient role for request")
			RespondError(w, r, http.StatusForbidden, ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
