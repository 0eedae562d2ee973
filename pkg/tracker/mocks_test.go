package tracker_test

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/apptrack/pkg/identity"
	"github.com/dmitrymomot/apptrack/pkg/tracking"
)

// MockClient is a mock implementation of tracker.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateUser(ctx context.Context, payload tracking.UserPayload) (tracking.UserCreated, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(tracking.UserCreated), args.Error(1)
}

func (m *MockClient) CreateSession(ctx context.Context, payload tracking.SessionPayload) (tracking.SessionCreated, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(tracking.SessionCreated), args.Error(1)
}

var errStorageDown = errors.New("storage down")

// failingStorage wraps a memory storage and fails writes of the given key.
type failingStorage struct {
	*identity.MemoryStorage
	failKey string
}

func (s *failingStorage) Set(ctx context.Context, key, value string) error {
	if key == s.failKey {
		return errStorageDown
	}
	return s.MemoryStorage.Set(ctx, key, value)
}
