// Package client is the Go SDK for the causeway REST API.
//
// A Client carries an access and refresh token pair. When a request comes
// back 401 the pair is rotated through /auth/refresh exactly once per expiry
// event; concurrent callers queue on the shared refresh and retry with the
// new access token. A failed rotation surfaces ErrSessionExpired to every
// queued caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second
	userAgent      = "causeway-go-client/1"

	contentTypeJSON = "application/json"

	// maxProblemBytes caps how much of an error body is read back.
	maxProblemBytes = 64 << 10
)

// Client talks to one causeway deployment. It is safe for concurrent use.
type Client struct {
	baseURL string
	ua      string
	http    *http.Client

	mu      sync.Mutex
	access  string
	refresh string

	group singleflight.Group

	Auth        *AuthService
	Users       *UsersService
	Donors      *DonorsService
	Donations   *DonationsService
	Campaigns   *CampaignsService
	Volunteers  *VolunteersService
	Events      *EventsService
	Memberships *MembershipsService
	Posts       *PostsService
	Uploads     *UploadsService
	Stats       *StatsService
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to change the
// timeout or install a proxy-aware transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokens seeds a previously persisted token pair, resuming a session
// without a fresh login.
func WithTokens(pair TokenPair) Option {
	return func(c *Client) {
		c.access = pair.AccessToken
		c.refresh = pair.RefreshToken
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.ua = ua }
}

// New creates a client for the API at baseURL (scheme and host, without the
// /api/v1 prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("causeway: base URL is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      userAgent,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.Users = &UsersService{c: c}
	c.Donors = &DonorsService{c: c}
	c.Donations = &DonationsService{c: c}
	c.Campaigns = &CampaignsService{c: c}
	c.Volunteers = &VolunteersService{c: c}
	c.Events = &EventsService{c: c}
	c.Memberships = &MembershipsService{c: c}
	c.Posts = &PostsService{c: c}
	c.Uploads = &UploadsService{c: c}
	c.Stats = &StatsService{c: c}
	return c, nil
}

// BaseURL returns the server base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tokens returns a snapshot of the current token pair, for persisting a
// session across invocations. The pair rotates on every refresh, so callers
// should re-read it after API activity.
func (c *Client) Tokens() TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TokenPair{AccessToken: c.access, RefreshToken: c.refresh}
}

// SetTokens replaces the stored token pair.
func (c *Client) SetTokens(pair TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = pair.AccessToken
	c.refresh = pair.RefreshToken
}

func (c *Client) clearTokens() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = ""
	c.refresh = ""
}

// doJSON performs an authenticated JSON round trip. A nil out discards the
// response body; a nil in sends no body.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	body, contentType, err := encodeBody(in)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	defer drain(resp)

	return decode(operation(method, path), resp, out)
}

// send performs an authenticated request, rotating the token pair once when
// the first attempt comes back 401. The caller owns the response body.
//
// The token snapshot is taken before the first attempt: a caller that
// started with a live session gets session-expired semantics even when a
// concurrent failed refresh clears the pair mid-flight.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*http.Response, error) {
	c.mu.Lock()
	token, canRefresh := c.access, c.refresh != ""
	c.mu.Unlock()

	resp, err := c.attempt(ctx, method, path, query, body, contentType, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !canRefresh {
		return resp, nil
	}

	drain(resp)
	fresh, err := c.refreshAccess(ctx, token)
	if err != nil {
		return nil, err
	}
	return c.attempt(ctx, method, path, query, body, contentType, fresh)
}

// attempt performs exactly one HTTP exchange.
func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, body []byte, contentType, token string) (*http.Response, error) {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("causeway: %s: %w", operation(method, path), err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.ua)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("causeway: %s: %w", operation(method, path), err)
	}
	return resp, nil
}

// refreshAccess rotates the token pair, collapsing concurrent callers into a
// single POST /auth/refresh. staleAccess is the access token that just got a
// 401; when another caller already rotated past it, the stored pair is
// reused without a network call.
func (c *Client) refreshAccess(ctx context.Context, staleAccess string) (string, error) {
	v, err, _ := c.group.Do("refresh", func() (any, error) {
		c.mu.Lock()
		current, refresh := c.access, c.refresh
		c.mu.Unlock()

		if current != "" && current != staleAccess {
			return current, nil
		}
		if refresh == "" {
			return nil, &APIError{
				Sentinel:  ErrSessionExpired,
				Operation: operation(http.MethodPost, "/auth/refresh"),
				Status:    http.StatusUnauthorized,
			}
		}

		var session Session
		err := c.public(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refresh}, &session)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
				// The refresh token is spent or revoked. Queued callers
				// all fail with the session error rather than retrying.
				c.clearTokens()
				apiErr.Sentinel = ErrSessionExpired
			}
			return nil, err
		}

		c.SetTokens(session.TokenPair)
		return session.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// public performs an unauthenticated JSON round trip without refresh-retry.
// The auth endpoints use it; everything else goes through doJSON.
func (c *Client) public(ctx context.Context, method, path string, in, out any) error {
	body, contentType, err := encodeBody(in)
	if err != nil {
		return err
	}

	resp, err := c.attempt(ctx, method, path, nil, body, contentType, "")
	if err != nil {
		return err
	}
	defer drain(resp)

	return decode(operation(method, path), resp, out)
}

// decode maps an error status onto an *APIError or unmarshals the body
// into out.
func decode(op string, resp *http.Response, out any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		return apiErrorFromResponse(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{
			Sentinel:  ErrBadResponse,
			Operation: op,
			Status:    resp.StatusCode,
			Err:       err,
		}
	}
	return nil
}

// problemDocument is the RFC 7807 body the API sends on errors.
type problemDocument struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Detail    string `json:"detail"`
	Details   any    `json:"details"`
	Instance  string `json:"instance"`
	RequestID string `json:"request_id"`
}

// apiErrorFromResponse builds the rich error from a problem response. A
// body that is not a problem document still yields a status-mapped error.
func apiErrorFromResponse(op string, resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxProblemBytes))

	var p problemDocument
	_ = json.Unmarshal(raw, &p)

	detail := p.Detail
	if detail == "" {
		if s, ok := p.Details.(string); ok {
			detail = s
		}
	}
	reqID := p.RequestID
	if reqID == "" {
		reqID = resp.Header.Get("X-Request-ID")
	}

	return &APIError{
		Sentinel:  sentinelForStatus(resp.StatusCode),
		Operation: op,
		Status:    resp.StatusCode,
		Code:      p.Code,
		Detail:    detail,
		RequestID: reqID,
	}
}

// encodeBody marshals a JSON request body. nil stays nil so GET and DELETE
// send no body at all.
func encodeBody(in any) (body []byte, contentType string, err error) {
	if in == nil {
		return nil, "", nil
	}
	body, err = json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("causeway: encode request: %w", err)
	}
	return body, contentTypeJSON, nil
}

// drain discards the remaining body and closes it so the connection can be
// reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProblemBytes))
	_ = resp.Body.Close()
}

func operation(method, path string) string {
	return method + " " + apiPrefix + path
}

// ListOptions selects a page of a collection.
type ListOptions struct {
	Limit  int
	Offset int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Limit > 0 {
		v.Set("limit", fmt.Sprint(o.Limit))
	}
	if o.Offset > 0 {
		v.Set("offset", fmt.Sprint(o.Offset))
	}
	return v
}
