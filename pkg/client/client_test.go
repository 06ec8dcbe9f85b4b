package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func stubJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func stubProblem(w http.ResponseWriter, status int, code, detail string) {
	body := map[string]any{
		"type":       "error/" + strings.ToLower(code),
		"title":      "stub error",
		"status":     status,
		"code":       code,
		"request_id": "req-7",
	}
	if detail != "" {
		body["detail"] = detail
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func stubSession(access, refresh string) map[string]any {
	return map[string]any{
		"user": map[string]any{
			"id":     "u1",
			"email":  "admin@example.test",
			"name":   "Admin",
			"role":   "admin",
			"active": true,
		},
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    900,
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("   ")
	require.Error(t, err)
}

func TestLogin_StoresTokenPair(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["email"] != "admin@example.test" || in["password"] != "opensesame" {
			stubProblem(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "")
			return
		}
		stubJSON(w, http.StatusOK, stubSession("acc-1", "ref-1"))
	})

	c := newStubClient(t, mux)

	session, err := c.Auth.Login(context.Background(), "admin@example.test", "opensesame")
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, RoleAdmin, session.User.Role)

	pair := c.Tokens()
	assert.Equal(t, "acc-1", pair.AccessToken)
	assert.Equal(t, "ref-1", pair.RefreshToken)

	_, err = c.Auth.Login(context.Background(), "admin@example.test", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"validation", http.StatusBadRequest, "VALIDATION", ErrValidation},
		{"forbidden", http.StatusForbidden, "FORBIDDEN", ErrForbidden},
		{"not found", http.StatusNotFound, "NOT_FOUND", ErrNotFound},
		{"conflict", http.StatusConflict, "CONFLICT", ErrConflict},
		{"too large", http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", ErrPayloadTooLarge},
		{"rate limited", http.StatusTooManyRequests, "RATE_LIMITED", ErrRateLimited},
		{"server error", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", ErrServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				stubProblem(w, tc.status, tc.code, "because reasons")
			})
			c := newStubClient(t, h, WithTokens(TokenPair{AccessToken: "acc"}))

			_, err := c.Donors.Get(context.Background(), "d1")
			require.ErrorIs(t, err, tc.want)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.code, apiErr.Code)
			assert.Equal(t, "because reasons", apiErr.Detail)
			assert.Equal(t, "req-7", apiErr.RequestID)
			assert.Contains(t, apiErr.Error(), tc.code)
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotAgent, gotAccept string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		stubJSON(w, http.StatusOK, DashboardSummary{})
	})

	c := newStubClient(t, h, WithTokens(TokenPair{AccessToken: "acc-9", RefreshToken: "ref-9"}))

	_, err := c.Stats.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer acc-9", gotAuth)
	assert.Equal(t, userAgent, gotAgent)
	assert.Equal(t, "application/json", gotAccept)
}

func TestRefresh_SingleFlight(t *testing.T) {
	const workers = 8

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		assert.Equal(t, "ref-0", in["refresh_token"])
		stubJSON(w, http.StatusOK, stubSession("acc-1", "ref-1"))
	})
	mux.HandleFunc("GET /api/v1/donors", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-1" {
			stubProblem(w, http.StatusUnauthorized, "INVALID_TOKEN", "")
			return
		}
		stubJSON(w, http.StatusOK, Page[Donor]{Items: []Donor{}})
	})

	c := newStubClient(t, mux, WithTokens(TokenPair{AccessToken: "acc-0", RefreshToken: "ref-0"}))

	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Donors.List(context.Background(), DonorListOptions{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, int32(1), refreshCalls.Load(), "expected exactly one token refresh")

	pair := c.Tokens()
	assert.Equal(t, "acc-1", pair.AccessToken)
	assert.Equal(t, "ref-1", pair.RefreshToken)
}

func TestRefresh_FailureFansOutSessionExpired(t *testing.T) {
	const workers = 4

	var refreshCalls atomic.Int32
	var arrived sync.WaitGroup
	arrived.Add(workers)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		stubProblem(w, http.StatusUnauthorized, "INVALID_TOKEN", "")
	})
	mux.HandleFunc("GET /api/v1/donors", func(w http.ResponseWriter, _ *http.Request) {
		// Hold every first attempt until all workers are in flight, so
		// each of them sees the 401 before the shared refresh runs.
		arrived.Done()
		arrived.Wait()
		stubProblem(w, http.StatusUnauthorized, "INVALID_TOKEN", "")
	})

	c := newStubClient(t, mux, WithTokens(TokenPair{AccessToken: "acc-0", RefreshToken: "ref-0"}))

	errs := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Donors.List(context.Background(), DonorListOptions{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.ErrorIs(t, err, ErrSessionExpired, "worker %d", i)
	}
	assert.Equal(t, int32(1), refreshCalls.Load(), "queued callers must share one failed refresh")

	pair := c.Tokens()
	assert.Empty(t, pair.AccessToken)
	assert.Empty(t, pair.RefreshToken)
}

func TestRefresh_RetriesOnlyOnce(t *testing.T) {
	var refreshCalls, donorCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		stubJSON(w, http.StatusOK, stubSession("acc-1", "ref-1"))
	})
	mux.HandleFunc("GET /api/v1/donors", func(w http.ResponseWriter, _ *http.Request) {
		donorCalls.Add(1)
		stubProblem(w, http.StatusUnauthorized, "INVALID_TOKEN", "")
	})

	c := newStubClient(t, mux, WithTokens(TokenPair{AccessToken: "acc-0", RefreshToken: "ref-0"}))

	_, err := c.Donors.List(context.Background(), DonorListOptions{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(2), donorCalls.Load(), "one retry after the refresh, no loop")
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestNoRefreshToken_NoRetry(t *testing.T) {
	var refreshCalls, donorCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		stubJSON(w, http.StatusOK, stubSession("acc-1", "ref-1"))
	})
	mux.HandleFunc("GET /api/v1/donors", func(w http.ResponseWriter, _ *http.Request) {
		donorCalls.Add(1)
		stubProblem(w, http.StatusUnauthorized, "UNAUTHORIZED", "")
	})

	c := newStubClient(t, mux)

	_, err := c.Donors.List(context.Background(), DonorListOptions{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), donorCalls.Load())
	assert.Equal(t, int32(0), refreshCalls.Load())
}

func TestListQueryParams(t *testing.T) {
	var got url.Values
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		stubJSON(w, http.StatusOK, Page[Donation]{})
	})

	c := newStubClient(t, h, WithTokens(TokenPair{AccessToken: "acc"}))

	_, err := c.Donations.List(context.Background(), DonationListOptions{
		ListOptions: ListOptions{Limit: 5, Offset: 10},
		DonorID:     "d1",
		CampaignID:  "c1",
		Status:      DonationRefunded,
	})
	require.NoError(t, err)
	assert.Equal(t, "5", got.Get("limit"))
	assert.Equal(t, "10", got.Get("offset"))
	assert.Equal(t, "d1", got.Get("donor_id"))
	assert.Equal(t, "c1", got.Get("campaign_id"))
	assert.Equal(t, "refunded", got.Get("status"))
}

func TestUploadRoundTrip(t *testing.T) {
	content := []byte("%PDF-1.4 annual report")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/uploads", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile(uploadFormField)
		if err != nil {
			stubProblem(w, http.StatusBadRequest, "VALIDATION", err.Error())
			return
		}
		defer func() { _ = f.Close() }()
		got, _ := io.ReadAll(f)

		assert.Equal(t, "annual report.pdf", hdr.Filename)
		assert.Equal(t, content, got)
		stubJSON(w, http.StatusCreated, Upload{
			ID:         "up1",
			Name:       "annual report.pdf",
			StoredName: "0b7c9f.pdf",
			SizeBytes:  int64(len(got)),
		})
	})
	mux.HandleFunc("GET /api/v1/uploads/{name}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0b7c9f.pdf", r.PathValue("name"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(content)
	})
	mux.HandleFunc("DELETE /api/v1/uploads/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := newStubClient(t, mux, WithTokens(TokenPair{AccessToken: "acc"}))
	ctx := context.Background()

	up, err := c.Uploads.Upload(ctx, "annual report.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "up1", up.ID)
	assert.Equal(t, int64(len(content)), up.SizeBytes)

	rd, contentType, err := c.Uploads.Download(ctx, up.StoredName)
	require.NoError(t, err)
	defer func() { _ = rd.Close() }()
	back, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, content, back)
	assert.Equal(t, "application/pdf", contentType)

	require.NoError(t, c.Uploads.Delete(ctx, up.ID))
}

func TestLogout_ClearsTokens(t *testing.T) {
	var logoutCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logoutCalls.Add(1)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		assert.Equal(t, "ref-0", in["refresh_token"])
		w.WriteHeader(http.StatusNoContent)
	})

	c := newStubClient(t, mux, WithTokens(TokenPair{AccessToken: "acc-0", RefreshToken: "ref-0"}))

	require.NoError(t, c.Auth.Logout(context.Background()))
	assert.Equal(t, int32(1), logoutCalls.Load())
	assert.Empty(t, c.Tokens().RefreshToken)

	// Without a stored pair there is nothing to revoke.
	require.NoError(t, c.Auth.Logout(context.Background()))
	assert.Equal(t, int32(1), logoutCalls.Load())
}

func TestDecode_MalformedBody(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not-json"))
	})
	c := newStubClient(t, h, WithTokens(TokenPair{AccessToken: "acc"}))

	_, err := c.Stats.Summary(context.Background())
	require.ErrorIs(t, err, ErrBadResponse)
}
