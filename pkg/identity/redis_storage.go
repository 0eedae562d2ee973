package identity

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage implements Storage with plain Redis string keys.
// Values never expire.
type RedisStorage struct {
	db redis.UniversalClient
}

// NewRedisStorage wraps an already connected client.
func NewRedisStorage(client redis.UniversalClient) *RedisStorage {
	if client == nil {
		panic("identity: nil redis client")
	}
	return &RedisStorage{db: client}
}

// Get returns false for missing keys (redis.Nil is not an error here).
func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	val, err := s.db.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.db.Set(ctx, key, value, 0).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Del(ctx, keys...).Err()
}

// Close terminates the Redis connection.
func (s *RedisStorage) Close() error {
	return s.db.Close()
}
