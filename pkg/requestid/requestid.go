package requestid

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
)

// Header carries the request id on both requests and responses.
const Header = "X-Request-ID"

const maxLength = 128

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type contextKey struct{}

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id is safe to echo back and log.
func Valid(id string) bool {
	return id != "" && len(id) <= maxLength && validID.MatchString(id)
}

// WithContext stores id in ctx.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Ensure returns ctx unchanged when it already carries an id, otherwise a
// child context with a new one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithContext(ctx, id), id
}

// LogAttr is a logger context extractor adding "request_id".
func LogAttr(ctx context.Context) (slog.Attr, bool) {
	if id := FromContext(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}
