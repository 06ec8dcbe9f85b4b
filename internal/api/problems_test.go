package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/causewayhq/causeway/internal/store"
)

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), "body: %s", rr.Body.String())
	return m
}

func TestWriteProblemShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/widgets/42?q=x", nil)
	rr := httptest.NewRecorder()

	writeProblem(rr, req, http.StatusNotFound, "error/not_found", "Resource not found",
		"NOT_FOUND", "widget 42 is gone", map[string]any{
			"hint":   "check the id",
			"status": 999,
			"title":  "spoofed",
		})

	require.Equal(t, http.StatusNotFound, rr.Code)
	m := decodeProblem(t, rr)

	assert.Equal(t, "error/not_found", m["type"])
	assert.Equal(t, "Resource not found", m["title"])
	assert.Equal(t, float64(http.StatusNotFound), m["status"])
	assert.Equal(t, "NOT_FOUND", m["code"])
	assert.Equal(t, "widget 42 is gone", m["detail"])

	// The instance is the path only, never the query string.
	assert.Equal(t, "/api/v1/widgets/42", m["instance"])

	// Extensions survive; reserved keys in extras are dropped.
	assert.Equal(t, "check the id", m["hint"])

	// The correlation key is always present, even without middleware.
	v, ok := m[JSONKeyRequestID]
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestRespondErrorDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/donors/abc", nil)
	rr := httptest.NewRecorder()
	RespondError(rr, req, http.StatusConflict, ErrConflict, "donor has recorded history")

	m := decodeProblem(t, rr)
	assert.Equal(t, "error/conflict", m["type"])
	assert.Equal(t, "CONFLICT", m["code"])
	assert.Equal(t, "donor has recorded history", m["details"])

	// Without a detail argument no details key is emitted.
	rr = httptest.NewRecorder()
	RespondError(rr, req, http.StatusForbidden, ErrForbidden)
	m = decodeProblem(t, rr)
	_, ok := m["details"]
	assert.False(t, ok)

	// Same when the caller passes an explicit nil.
	rr = httptest.NewRecorder()
	RespondError(rr, req, http.StatusForbidden, ErrForbidden, nil)
	m = decodeProblem(t, rr)
	_, ok = m["details"]
	assert.False(t, ok)
}

func TestConflictDetail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "wrapped conflict keeps the remainder",
			err:  fmt.Errorf("%w: donor has recorded history", store.ErrConflict),
			want: "donor has recorded history",
		},
		{
			name: "bare sentinel becomes empty",
			err:  store.ErrConflict,
			want: "",
		},
		{
			name: "unrelated errors pass through",
			err:  errors.New("disk on fire"),
			want: "disk on fire",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, conflictDetail(tc.err))
		})
	}
}

// TestRouterProblemResponses exercises the catch-all handlers through the
// full middleware stack, where the request ID in the body must match the
// response header.
func TestRouterProblemResponses(t *testing.T) {
	ts := newTestServer(t)

	_, rr := ts.do(t, http.MethodGet, "/api/v1/definitely/not/here", "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	m := decodeProblem(t, rr)
	assert.Equal(t, "NOT_FOUND", m["code"])
	assert.Equal(t, "/api/v1/definitely/not/here", m["instance"])

	reqID := rr.Header().Get(HeaderRequestID)
	require.NotEmpty(t, reqID)
	assert.Equal(t, reqID, m[JSONKeyRequestID])

	_, rr = ts.do(t, http.MethodDelete, "/api/v1/stats/summary", "", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeProblem(t, rr)["code"])
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", store.DefaultLimit, 0},
		{"explicit", "limit=25&offset=100", 25, 100},
		{"garbage falls back", "limit=abc&offset=xyz", store.DefaultLimit, 0},
		{"negative falls back", "limit=-3&offset=-1", store.DefaultLimit, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/donors?"+tc.query, nil)
			limit, offset := pageParams(r)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}
