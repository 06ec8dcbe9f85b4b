package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/causewayhq/causeway/internal/log"
)

const (
	// HeaderRequestID is the canonical header for request correlation.
	HeaderRequestID = "X-Request-ID"

	// JSONKeyRequestID is the canonical JSON key for request correlation.
	JSONKeyRequestID = "request_id"
)

// APIError pairs a stable machine-readable code with a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// The error catalogue. Codes are stable API contract; messages may change.
var (
	ErrUnauthorized = &APIError{
		Code:    "UNAUTHORIZED",
		Message: "Authentication required",
	}
	ErrInvalidToken = &APIError{
		Code:    "INVALID_TOKEN",
		Message: "Invalid or expired token",
	}
	ErrInvalidCredentials = &APIError{
		Code:    "INVALID_CREDENTIALS",
		Message: "Email or password is incorrect",
	}
	ErrForbidden = &APIError{
		Code:    "FORBIDDEN",
		Message: "Access denied",
	}
	ErrRegistrationClosed = &APIError{
		Code:    "REGISTRATION_CLOSED",
		Message: "Registration is closed",
	}

	ErrNotFound = &APIError{
		Code:    "NOT_FOUND",
		Message: "Resource not found",
	}
	ErrConflict = &APIError{
		Code:    "CONFLICT",
		Message: "Request conflicts with current resource state",
	}

	ErrValidation = &APIError{
		Code:    "VALIDATION",
		Message: "Invalid input",
	}
	ErrPayloadTooLarge = &APIError{
		Code:    "PAYLOAD_TOO_LARGE",
		Message: "Request body exceeds the allowed size",
	}
	ErrPathTraversal = &APIError{
		Code:    "PATH_TRAVERSAL",
		Message: "Invalid file path",
	}

	ErrRateLimited = &APIError{
		Code:    "RATE_LIMITED",
		Message: "Too many requests",
	}

	ErrMethodNotAllowed = &APIError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "Method not allowed",
	}
	ErrInternal = &APIError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "An internal error occurred",
	}
)

// RespondError sends a structured error as an RFC 7807 problem response.
// Optional details end up in the "details" extension field.
func RespondError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError, details ...any) {
	var extra map[string]any
	if len(details) > 0 && details[0] != nil {
		extra = map[string]any{"details": details[0]}
	}
	problemType := "error/" + strings.ToLower(apiErr.Code)
	writeProblem(w, r, status, problemType, apiErr.Message, apiErr.Code, "", extra)
}

// writeProblem writes an RFC 7807 problem details response.
//
// Semantics:
//   - type: canonical machine identifier (e.g. "error/not_found")
//   - title: human-readable short label
//   - code: stable machine-readable short code (e.g. "NOT_FOUND")
//   - detail: human-readable explanation of this specific occurrence
//
// Every response carries the request ID so clients can quote it in reports.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string, extra map[string]any) {
	instance := ""
	reqID := ""
	if r != nil {
		instance = r.URL.EscapedPath()
		reqID = log.RequestIDFromContext(r.Context())
	}
	if reqID == "" {
		reqID = w.Header().Get(HeaderRequestID)
	}

	res := map[string]any{
		"type":           problemType,
		"title":          title,
		"status":         status,
		"code":           code,
		JSONKeyRequestID: reqID,
	}
	if detail != "" {
		res["detail"] = detail
	}
	if instance != "" {
		res["instance"] = instance
	}

	// Extensions land at top level; canonical keys always win.
	for k, v := range extra {
		switch k {
		case "type", "title", "status", "code", "detail", "instance", JSONKeyRequestID:
			log.Base().Warn().Str("key", k).Str("problem_type", problemType).Msg("ignoring reserved key in problem extras")
			continue
		}
		res[k] = v
	}

	if reqID != "" {
		w.Header().Set(HeaderRequestID, reqID)
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Base().Error().
			Err(err).
			Str("type", problemType).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}
