package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is checks at the boundary. Every failed API
// call wraps one of these in an *APIError carrying the response details.
var (
	ErrUnauthorized    = errors.New("authentication required")
	ErrSessionExpired  = errors.New("session expired, sign in again")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("conflict with current resource state")
	ErrValidation      = errors.New("invalid request")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrRateLimited     = errors.New("rate limited")
	ErrServer          = errors.New("server error")
	ErrRequestFailed   = errors.New("request failed")
	ErrBadResponse     = errors.New("malformed response")
)

// APIError is a rich error wrapping a sentinel with the response context:
// status, the server's stable error code, the human-readable detail and the
// request ID to quote in bug reports.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Code      string
	Detail    string
	RequestID string
	Err       error // nested lower-level error (e.g. a decode failure)
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("causeway: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("%s (request %s)", msg, e.RequestID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}

// sentinelForStatus maps an HTTP status onto the sentinel callers match on.
func sentinelForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if status >= http.StatusInternalServerError {
		return ErrServer
	}
	return ErrRequestFailed
}
