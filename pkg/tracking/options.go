package tracking

import (
	"net/http"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "apptrack-client/1.0"
	maxErrorBody     = 200
)

// RequestResult describes one completed HTTP exchange.
type RequestResult struct {
	Path       string
	RequestID  string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// RequestHook is called after every request, successful or not.
type RequestHook func(RequestResult)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
// The client's own Timeout is honoured; WithTimeout still applies per request.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds each request. Default is 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithHeader adds a header to every request. Content-Type cannot be overridden.
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		if key != "" && value != "" {
			cl.headers.Set(key, value)
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithOnRequest registers a hook invoked after each request, for logging or metrics.
func WithOnRequest(hook RequestHook) Option {
	return func(cl *Client) {
		cl.onRequest = hook
	}
}
