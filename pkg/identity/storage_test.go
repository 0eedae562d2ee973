package identity_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apptrack/pkg/identity"
)

// exerciseStorage runs the shared Storage contract against s.
func exerciseStorage(t *testing.T, s identity.Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "b", "2"))
	require.NoError(t, s.Set(ctx, "a", "3"))

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	require.NoError(t, s.Set(ctx, "empty", ""))
	v, ok, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)

	require.NoError(t, s.Delete(ctx, "a", "missing"))
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.NoError(t, s.Delete(ctx))
	assert.ErrorIs(t, s.Set(ctx, "", "x"), identity.ErrEmptyKey)
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()
	exerciseStorage(t, identity.NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "identity.yaml")

	fs, err := identity.NewFileStorage(path)
	require.NoError(t, err)
	exerciseStorage(t, fs)

	t.Run("survives reopen", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, fs.Set(ctx, "apptrack.device_id", "device-1"))

		reopened, err := identity.NewFileStorage(path)
		require.NoError(t, err)

		v, ok, err := reopened.Get(ctx, "apptrack.device_id")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "device-1", v)

		_, ok, err = reopened.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects corrupt document", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("- not\n- a map\n"), 0o600))

		_, err := identity.NewFileStorage(bad)
		assert.ErrorIs(t, err, identity.ErrFailedToReadFile)
	})

	t.Run("requires a path", func(t *testing.T) {
		_, err := identity.NewFileStorage("")
		assert.ErrorIs(t, err, identity.ErrInvalidStorage)
	})
}

func TestSQLiteStorage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "identity.db")

	s, err := identity.OpenSQLiteStorage(path)
	require.NoError(t, err)
	exerciseStorage(t, s)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "apptrack.user_id", "42"))
	require.NoError(t, s.Close())

	reopened, err := identity.OpenSQLiteStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	v, ok, err := reopened.Get(ctx, "apptrack.user_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	t.Parallel()
	s, err := identity.OpenSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStorage(t, s)
}

func TestRedisStorage(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	require.NoError(t, client.Ping(context.Background()).Err())

	s := identity.NewRedisStorage(client)
	t.Cleanup(func() {
		_ = client.Del(context.Background(), "a", "b", "empty").Err()
		_ = s.Close()
	})
	exerciseStorage(t, s)
}
