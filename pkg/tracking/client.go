package tracking

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
	"time"

	"github.com/dmitrymomot/apptrack/pkg/requestid"
)

const (
	PathCreateUser    = "/users/add/"
	PathCreateSession = "/users/session/"
)

// Client talks to the analytics service. Safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	headers   http.Header
	onRequest RequestHook
}

// NewClient validates baseURL and returns a configured Client.
// baseURL is the versioned API root, e.g. "https://api.example.com/v1".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: base,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		headers:   make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateUser registers the install's anonymous user.
func (c *Client) CreateUser(ctx context.Context, payload UserPayload) (UserCreated, error) {
	var resp struct {
		Msg    string `json:"msg"`
		UserID *int64 `json:"user_id"`
	}
	if err := c.post(ctx, PathCreateUser, payload, &resp); err != nil {
		return UserCreated{}, err
	}
	if resp.UserID == nil {
		return UserCreated{}, fmt.Errorf("%w: %s: missing user_id", ErrDecodeResponse, PathCreateUser)
	}
	if *resp.UserID <= 0 {
		return UserCreated{}, fmt.Errorf("%w: %s: non-positive user_id %d", ErrDecodeResponse, PathCreateUser, *resp.UserID)
	}
	return UserCreated{Msg: resp.Msg, UserID: *resp.UserID}, nil
}

// CreateSession records one session/event for an existing user.
func (c *Client) CreateSession(ctx context.Context, payload SessionPayload) (SessionCreated, error) {
	var resp struct {
		Msg           string `json:"msg"`
		UserID        *int64 `json:"user_id"`
		UserSessionID *int64 `json:"user_session_id"`
	}
	if err := c.post(ctx, PathCreateSession, payload, &resp); err != nil {
		return SessionCreated{}, err
	}
	if resp.UserID == nil || resp.UserSessionID == nil {
		return SessionCreated{}, fmt.Errorf("%w: %s: missing user_id or user_session_id", ErrDecodeResponse, PathCreateSession)
	}
	if *resp.UserID <= 0 || *resp.UserSessionID <= 0 {
		return SessionCreated{}, fmt.Errorf("%w: %s: non-positive id", ErrDecodeResponse, PathCreateSession)
	}
	return SessionCreated{Msg: resp.Msg, UserID: *resp.UserID, UserSessionID: *resp.UserSessionID}, nil
}

// post performs a single JSON POST and decodes a 2xx body into out.
func (c *Client) post(ctx context.Context, path string, in, out any) (err error) {
	start := time.Now()
	status := 0
	ctx, reqID := requestid.Ensure(ctx)
	if c.onRequest != nil {
		defer func() {
			c.onRequest(RequestResult{
				Path:       path,
				RequestID:  reqID,
				StatusCode: status,
				Duration:   time.Since(start),
				Err:        err,
			})
		}()
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeRequest, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestid.Header, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %w: %w", ErrTransport, ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	// 64KB is far beyond any legitimate response of this API.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: sanitizeBody(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecodeResponse, path, err)
	}
	return nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: base URL is required", ErrInvalidConfiguration)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidConfiguration)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: host is required", ErrInvalidConfiguration)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// sanitizeBody flattens and truncates a response body for error messages.
func sanitizeBody(raw []byte) string {
	s := strings.TrimSpace(strings.ReplaceAll(string(raw), "\n", " "))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
