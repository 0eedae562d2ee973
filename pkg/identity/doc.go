// Package identity persists the install-scoped identity of a tracking client.
//
// The package is split in two layers. Storage is a minimal key/value contract
// that any durable backend can satisfy. Store wraps a Storage and exposes
// typed accessors for the handful of values the tracking protocol needs:
// device identifier and its type, vendor identifier, pseudo identifier,
// server assigned user id, the "user created" flag and the install date.
//
// Every key written through Store is namespaced (default "apptrack.") so the
// values can share a backend with unrelated application state.
//
// # Backends
//
//   - MemoryStorage keeps values in a map. Useful for tests and ephemeral runs.
//   - FileStorage keeps a YAML document on disk, rewritten atomically.
//   - SQLiteStorage keeps a single kv table in a SQLite database.
//   - RedisStorage keeps plain string keys in Redis.
//
// # Usage
//
//	storage, err := identity.NewFileStorage("/var/lib/app/identity.yaml")
//	if err != nil {
//	    return err
//	}
//	store := identity.NewStore(storage)
//
//	id, ok, err := store.UserID(ctx)
//
// # Clearing
//
// ClearAccount removes the user id, the created flag and the install date.
// Device, vendor and pseudo identifiers describe the install rather than the
// account and are left untouched.
package identity
