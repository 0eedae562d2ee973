package tracker

import "errors"

var (
	// ErrNoUser is returned when a session is requested before a user exists.
	ErrNoUser = errors.New("tracker: no user, call Initialize first")

	ErrInvalidEventType = errors.New("tracker: invalid event type")
	ErrInvalidVertical  = errors.New("tracker: invalid vertical")
	ErrProvisioning     = errors.New("tracker: failed to provision device identity")
	ErrCreateUser       = errors.New("tracker: create user failed")
	ErrPersistAccount   = errors.New("tracker: failed to persist account")
	ErrLoadAccount      = errors.New("tracker: failed to load account")
	ErrClearAccount     = errors.New("tracker: failed to clear account")
)
