package deviceid_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDevice is a mock implementation of platform.Device.
type MockDevice struct {
	mock.Mock
}

func (m *MockDevice) AdvertisingID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDevice) VendorID(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockDevice) Locale(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}
