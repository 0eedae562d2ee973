package deviceid

import "errors"

var (
	ErrPlatformLookup = errors.New("deviceid: platform identifier lookup failed")
	ErrPersist        = errors.New("deviceid: failed to persist identifier")
	ErrLoad           = errors.New("deviceid: failed to load identifier")
	ErrRandomSource   = errors.New("deviceid: random source failed")
)
