package tracking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("tracking: invalid client configuration")
	ErrEncodeRequest        = errors.New("tracking: failed to encode request")
	ErrTransport            = errors.New("tracking: request failed")
	ErrTimeout              = errors.New("tracking: request timed out")
	ErrUnexpectedStatus     = errors.New("tracking: unexpected response status")
	ErrDecodeResponse       = errors.New("tracking: failed to decode response")
)

// StatusError describes a non-2xx response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
