package identity

import "context"

// Storage is a durable string key/value store.
// Implementations must be safe for concurrent use and must not validate values.
type Storage interface {
	// Get returns the value for key. The bool is false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
