package tracker

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

const (
	// SessionTypeAPI is the fixed session "type" sent with every event.
	SessionTypeAPI = "api"

	DefaultAppCode       = "apptrack"
	DefaultAcquiredRoute = "organic"
	DefaultSessionRoute  = "organic"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithAppCode sets the "app" field of the create-user request.
func WithAppCode(code string) Option {
	return func(t *Tracker) {
		if code != "" {
			t.appCode = code
		}
	}
}

// WithAcquiredRoute sets the "acquired_route" field of the create-user request.
func WithAcquiredRoute(route string) Option {
	return func(t *Tracker) {
		if route != "" {
			t.acquiredRoute = route
		}
	}
}

// WithSessionRoute sets the "route" field of every session request.
func WithSessionRoute(route string) Option {
	return func(t *Tracker) {
		if route != "" {
			t.sessionRoute = route
		}
	}
}

// WithDefaultCountry sets the country code used when the device locale has no
// region. Default is platform.DefaultCountryCode.
func WithDefaultCountry(code string) Option {
	return func(t *Tracker) {
		if len(code) == 2 {
			t.defaultCountry = code
		}
	}
}

// WithEmail attaches an email address to the create-user request.
func WithEmail(email string) Option {
	return func(t *Tracker) { t.email = email }
}

// WithReferrerURL attaches the install referrer to the create-user request.
func WithReferrerURL(u string) Option {
	return func(t *Tracker) { t.referrerURL = u }
}

// WithClock replaces time.Now, used for the install date.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// SessionOption customizes a single session request.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	tag         string
	attribution *tracking.Attribution
}

// WithTag overrides the default tag (the event type string).
func WithTag(tag string) SessionOption {
	return func(c *sessionConfig) {
		if tag != "" {
			c.tag = tag
		}
	}
}

// WithAttribution attaches ad-campaign metadata. A zero value is ignored.
func WithAttribution(a tracking.Attribution) SessionOption {
	return func(c *sessionConfig) {
		if !a.IsZero() {
			c.attribution = &a
		}
	}
}
