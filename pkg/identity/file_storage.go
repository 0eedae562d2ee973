package identity

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStorage implements Storage on top of a single YAML document.
// The whole document is loaded at open time and rewritten on every change
// through a temp file and rename, so a crash mid-write keeps the old state.
type FileStorage struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// NewFileStorage opens (or lazily creates) the YAML document at path.
// The parent directory is created if missing.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: file path is required", ErrInvalidStorage)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStorage, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStorage, err)
	}

	fs := &FileStorage{path: abs, values: make(map[string]string)}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Path returns the absolute location of the document.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileStorage) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	next[key] = value
	if err := f.flush(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileStorage) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	changed := false
	for _, k := range keys {
		if _, ok := next[k]; ok {
			delete(next, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := f.flush(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileStorage) load() error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToReadFile, err)
	}
	if len(data) == 0 {
		return nil
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToReadFile, err)
	}
	f.values = values
	return nil
}

// flush must be called with the write lock held.
func (f *FileStorage) flush(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".identity-*.yaml")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	return nil
}
