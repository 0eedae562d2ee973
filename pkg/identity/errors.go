package identity

import "errors"

var (
	ErrEmptyKey          = errors.New("identity: key cannot be empty")
	ErrInvalidValue      = errors.New("identity: stored value is malformed")
	ErrInvalidStorage    = errors.New("identity: invalid storage configuration")
	ErrFailedToReadFile  = errors.New("identity: failed to read storage file")
	ErrFailedToWriteFile = errors.New("identity: failed to write storage file")
)
