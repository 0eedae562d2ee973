package main

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/apptrack/pkg/identity"
	"github.com/dmitrymomot/apptrack/pkg/redis"
)

// Storage backends selectable with --storage.
const (
	storageMemory = "memory"
	storageFile   = "file"
	storageSQLite = "sqlite"
	storageRedis  = "redis"
)

// openStorage returns the selected backend and a function releasing it.
func openStorage(ctx context.Context, kind, path string, redisCfg redis.Config) (identity.Storage, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case storageMemory:
		return identity.NewMemoryStorage(), noop, nil
	case storageFile:
		if path == "" {
			path = "apptrack.yaml"
		}
		s, err := identity.NewFileStorage(path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case storageSQLite:
		if path == "" {
			path = "apptrack.db"
		}
		s, err := identity.OpenSQLiteStorage(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case storageRedis:
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, err
		}
		s := identity.NewRedisStorage(client)
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q: want %s, %s, %s or %s",
			kind, storageMemory, storageFile, storageSQLite, storageRedis)
	}
}
