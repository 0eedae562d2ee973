package identity

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DefaultNamespace prefixes every key written through Store.
const DefaultNamespace = "apptrack."

// Keys, relative to the namespace.
const (
	KeyDeviceID     = "device_id"
	KeyDeviceIDType = "device_id_type"
	KeyVendorID     = "vendor_id"
	KeyPseudoID     = "pseudo_id"
	KeyUserID       = "user_id"
	KeyUserCreated  = "user_created"
	KeyInstallDate  = "install_date"
)

// accountKeys are removed by ClearAccount.
var accountKeys = []string{KeyUserID, KeyUserCreated, KeyInstallDate}

// Store gives typed access to identity values kept in a Storage.
type Store struct {
	storage   Storage
	namespace string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithNamespace overrides the key prefix. Empty values are ignored.
func WithNamespace(ns string) StoreOption {
	return func(s *Store) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

// NewStore wraps storage. It panics on a nil storage since nothing useful
// can happen without one.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	if storage == nil {
		panic("identity: nil storage")
	}
	s := &Store{storage: storage, namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return s.namespace + name
}

// Get reads a raw value by its un-namespaced key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	return s.storage.Get(ctx, s.key(key))
}

// Set writes a raw value by its un-namespaced key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return s.storage.Set(ctx, s.key(key), value)
}

// Clear removes the given un-namespaced keys.
func (s *Store) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			return ErrEmptyKey
		}
		full = append(full, s.key(k))
	}
	return s.storage.Delete(ctx, full...)
}

func (s *Store) DeviceID(ctx context.Context) (string, bool, error) {
	return s.nonEmpty(ctx, KeyDeviceID)
}

func (s *Store) SetDeviceID(ctx context.Context, id string) error {
	return s.Set(ctx, KeyDeviceID, id)
}

func (s *Store) DeviceIDType(ctx context.Context) (string, bool, error) {
	return s.nonEmpty(ctx, KeyDeviceIDType)
}

func (s *Store) SetDeviceIDType(ctx context.Context, typ string) error {
	return s.Set(ctx, KeyDeviceIDType, typ)
}

func (s *Store) VendorID(ctx context.Context) (string, bool, error) {
	return s.nonEmpty(ctx, KeyVendorID)
}

func (s *Store) SetVendorID(ctx context.Context, id string) error {
	return s.Set(ctx, KeyVendorID, id)
}

func (s *Store) PseudoID(ctx context.Context) (string, bool, error) {
	return s.nonEmpty(ctx, KeyPseudoID)
}

func (s *Store) SetPseudoID(ctx context.Context, id string) error {
	return s.Set(ctx, KeyPseudoID, id)
}

// UserID returns the server assigned user id.
func (s *Store) UserID(ctx context.Context) (int64, bool, error) {
	raw, ok, err := s.nonEmpty(ctx, KeyUserID)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %w", ErrInvalidValue, KeyUserID, err)
	}
	return id, true, nil
}

func (s *Store) SetUserID(ctx context.Context, id int64) error {
	return s.Set(ctx, KeyUserID, strconv.FormatInt(id, 10))
}

// UserCreated reports the persisted created flag. Absent means false.
func (s *Store) UserCreated(ctx context.Context) (bool, error) {
	raw, ok, err := s.nonEmpty(ctx, KeyUserCreated)
	if err != nil || !ok {
		return false, err
	}
	created, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrInvalidValue, KeyUserCreated, err)
	}
	return created, nil
}

func (s *Store) SetUserCreated(ctx context.Context, created bool) error {
	return s.Set(ctx, KeyUserCreated, strconv.FormatBool(created))
}

// InstallDate returns the moment the user account was created.
func (s *Store) InstallDate(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := s.nonEmpty(ctx, KeyInstallDate)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %s: %w", ErrInvalidValue, KeyInstallDate, err)
	}
	return t, true, nil
}

func (s *Store) SetInstallDate(ctx context.Context, t time.Time) error {
	return s.Set(ctx, KeyInstallDate, t.UTC().Format(time.RFC3339Nano))
}

// Account returns the persisted user id when both the id and the created flag
// are present. A half-written account, or a non-positive id, is reported as
// absent.
func (s *Store) Account(ctx context.Context) (int64, bool, error) {
	created, err := s.UserCreated(ctx)
	if err != nil || !created {
		return 0, false, err
	}
	id, ok, err := s.UserID(ctx)
	if err != nil || !ok || id <= 0 {
		return 0, false, err
	}
	return id, true, nil
}

// SaveAccount persists a freshly created account.
// The created flag is written last so a partial write never looks complete.
func (s *Store) SaveAccount(ctx context.Context, userID int64, installedAt time.Time) error {
	if err := s.SetUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.SetInstallDate(ctx, installedAt); err != nil {
		return err
	}
	return s.SetUserCreated(ctx, true)
}

// ClearAccount removes the user id, the created flag and the install date.
// Install identifiers are kept.
func (s *Store) ClearAccount(ctx context.Context) error {
	return s.Clear(ctx, accountKeys...)
}

func (s *Store) nonEmpty(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}
