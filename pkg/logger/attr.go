package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under the key "error".
// Returns an empty Attr for nil so callers can log unconditionally.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID records the server assigned user id. Zero ids are dropped.
func UserID(id int64) slog.Attr {
	if id == 0 {
		return slog.Attr{}
	}
	return slog.Int64("user_id", id)
}

// SessionID records a server assigned session id. Zero ids are dropped.
func SessionID(id int64) slog.Attr {
	if id == 0 {
		return slog.Attr{}
	}
	return slog.Int64("session_id", id)
}

// DeviceID records the device identifier and its type.
func DeviceID(id, typ string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return Group("device", slog.String("id", id), slog.String("type", typ))
}

// EventType records a tracked event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// Vertical records the product vertical under the key "vertical".
func Vertical(vertical string) slog.Attr {
	return slog.String("vertical", vertical)
}

// State records a lifecycle state under the key "state".
func State(state string) slog.Attr {
	return slog.String("state", state)
}

// Path records a request path under the key "path".
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// StatusCode records an HTTP status. Zero (no response) is dropped.
func StatusCode(code int) slog.Attr {
	if code == 0 {
		return slog.Attr{}
	}
	return slog.Int("status_code", code)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
