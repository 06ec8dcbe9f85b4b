package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causewayhq/causeway/internal/auth"
	"github.com/causewayhq/causeway/internal/cache"
	"github.com/causewayhq/causeway/internal/config"
	"github.com/causewayhq/causeway/internal/domain"
	"github.com/causewayhq/causeway/internal/mailer"
	"github.com/causewayhq/causeway/internal/store"
	"github.com/causewayhq/causeway/internal/uploads"
)

const testPassword = "sunflower-42"

// testServer wires a real store, session store and auth service against
// temp directories, so handler tests run the same code paths as production.
type testServer struct {
	*Server
	handler http.Handler
	st      *store.Store
	authSvc *auth.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "causeway.db"), store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := auth.OpenSessionStore(filepath.Join(dir, "sessions"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	authSvc, err := auth.NewService(st, sessions, auth.Config{
		JWTSecret:        []byte("test-secret-0123456789abcdef0123"),
		Issuer:           "causeway",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  time.Hour,
		BcryptCost:       4,
		RegistrationOpen: true,
	})
	require.NoError(t, err)

	up, err := uploads.NewStore(filepath.Join(dir, "uploads"), 1<<20)
	require.NoError(t, err)

	cfg := config.AppConfig{
		Version: "test",
		DataDir: dir,
		Auth:    config.AuthConfig{BcryptCost: 4},
		Cache:   config.CacheConfig{TTL: time.Minute},
	}
	srv := NewServer(cfg, Deps{
		Store:   st,
		Auth:    authSvc,
		Cache:   cache.NewMemory(0),
		Uploads: up,
		Mailer:  mailer.NewNoop(),
		Version: "test",
	})
	return &testServer{
		Server:  srv,
		handler: srv.Router(),
		st:      st,
		authSvc: authSvc,
	}
}

// do runs one request through the full middleware stack. A non-nil body is
// sent as JSON; a non-empty token goes into the Authorization header.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return req, rr
}

// seedLogin creates an account with the given role and returns it together
// with a token that carries that role. The very first account registered is
// promoted to admin; any other role is set afterwards and the token reissued
// through login so the role claim matches.
func (ts *testServer) seedLogin(t *testing.T, email string, role domain.Role) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()

	u, _, err := ts.authSvc.Register(ctx, email, "Seeded "+string(role), testPassword)
	require.NoError(t, err)

	if u.Role != role {
		u.Role = role
		u.UpdatedAt = time.Now().UTC()
		require.NoError(t, ts.st.UpdateUser(ctx, u))
	}

	_, pair, err := ts.authSvc.Login(ctx, email, testPassword)
	require.NoError(t, err)
	return u, pair.AccessToken
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func TestVersionEndpoint(t *testing.T) {
	ts := newTestServer(t)

	_, rr := ts.do(t, http.MethodGet, "/version", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody[map[string]string](t, rr)
	assert.Equal(t, "test", body["version"])
}

func TestSPAServesShellWithNoCache(t *testing.T) {
	ts := newTestServer(t)

	_, rr := ts.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<div id=\"root\">")
	assert.Equal(t, "no-cache, no-store, must-revalidate", rr.Header().Get("Cache-Control"))
}

func TestSPAFallsBackForClientRoutes(t *testing.T) {
	ts := newTestServer(t)

	// A path without a file extension is a client-side route; the shell
	// must come back so the SPA router can take over.
	_, rr := ts.do(t, http.MethodGet, "/campaigns/spring-gala", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<div id=\"root\">")
	assert.Equal(t, "no-cache, no-store, must-revalidate", rr.Header().Get("Cache-Control"))
}

func TestSPARejectsWriteMethods(t *testing.T) {
	ts := newTestServer(t)

	_, rr := ts.do(t, http.MethodPost, "/some/client/route", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestSecurityHeadersPresent(t *testing.T) {
	ts := newTestServer(t)

	_, rr := ts.do(t, http.MethodGet, "/version", "", nil)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))
}

func TestRequestIDRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set(HeaderRequestID, "test-correlation-42")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "test-correlation-42", rr.Header().Get(HeaderRequestID))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/donors", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestUnknownOriginGetsNoCORSHeader(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestBearerTokenParsing(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"case insensitive scheme", "bearer abc", "abc"},
		{"wrong scheme", "Basic dXNlcg==", ""},
		{"no token", "Bearer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, bearerToken(req))
		})
	}
}

func TestParseCIDRs(t *testing.T) {
	nets := ParseCIDRs([]string{"10.0.0.0/8", "192.0.2.7", "garbage", ""})
	require.Len(t, nets, 2)
	assert.True(t, nets[0].Contains(parseIP(t, "10.1.2.3")))
	assert.True(t, nets[1].Contains(parseIP(t, "192.0.2.7")))
	assert.False(t, nets[1].Contains(parseIP(t, "192.0.2.8")))
}

func parseIP(t *testing.T, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	require.NotNil(t, ip)
	return ip
}
