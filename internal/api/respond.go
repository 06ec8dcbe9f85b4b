package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/causewayhq/causeway/internal/log"
	"github.com/causewayhq/causeway/internal/store"
)

// maxBodyBytes caps JSON request bodies. Uploads use their own limit.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code. Encoding
// failures are logged; headers are already sent at that point.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).Error().
			Err(err).
			Int("status", status).
			Msg("failed to encode JSON response")
	}
}

// decodeJSON reads a size-capped JSON body into dst. On failure it writes
// the problem response itself and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(w, r, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge)
			return false
		}
		RespondError(w, r, http.StatusBadRequest, ErrValidation, err.Error())
		return false
	}
	return true
}

// listResponse is the envelope for every paged collection.
type listResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// pageParams parses limit and offset query parameters, leaving final
// clamping to the store. Bad values fall back to defaults rather than 400,
// so hand-typed URLs keep working.
func pageParams(r *http.Request) (limit, offset int) {
	limit = store.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// respondStoreError maps store sentinels onto problem responses. Anything
// unrecognized is a 500 with the cause logged, never echoed to the client.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondError(w, r, http.StatusNotFound, ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		RespondError(w, r, http.StatusConflict, ErrConflict, conflictDetail(err))
	default:
		log.FromContext(r.Context()).Error().
			Err(err).
			Str("event", "api.internal_error").
			Str("path", r.URL.Path).
			Msg("request failed")
		RespondError(w, r, http.StatusInternalServerError, ErrInternal)
	}
}

// conflictDetail strips the sentinel prefix so clients see only the
// human-readable remainder, e.g. "campaign cannot move from draft to completed".
func conflictDetail(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, store.ErrConflict.Error()); ok {
		return strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return msg
}
