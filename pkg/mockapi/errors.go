package mockapi

import "errors"

var (
	ErrMissingField = errors.New("mockapi: missing required field")
	ErrUnknownUser  = errors.New("mockapi: unknown user")
	ErrInvalidBody  = errors.New("mockapi: invalid request body")
)
