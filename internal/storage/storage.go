// Package storage provides the string key-value store behaviors use to
// persist small pieces of UI state, such as sidebar pin and collapse flags.
package storage

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// Store is an opaque string key-value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStore keeps values in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set implements Store.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FileStore is a MemoryStore persisted to a msgpack file. Every Set rewrites
// the file atomically.
type FileStore struct {
	*MemoryStore
	path string
	wmu  sync.Mutex
}

// OpenFileStore loads path if it exists. A missing file yields an empty
// store that is created on first Set.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{MemoryStore: NewMemoryStore(), path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return fs, nil
	case err != nil:
		return nil, canonerrors.NewIOError(canonerrors.ErrCodeStorage, "failed to read store", err)
	}
	if len(data) == 0 {
		return fs, nil
	}

	var values map[string]string
	if err := msgpack.Unmarshal(data, &values); err != nil {
		return nil, canonerrors.NewParseError(canonerrors.ErrCodeStorage, "failed to decode store "+path, err)
	}
	for k, v := range values {
		fs.values[k] = v
	}
	return fs, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// Set implements Store.
func (f *FileStore) Set(key, value string) error {
	if err := f.MemoryStore.Set(key, value); err != nil {
		return err
	}
	return f.flush()
}

func (f *FileStore) flush() error {
	f.wmu.Lock()
	defer f.wmu.Unlock()

	f.mu.RLock()
	packed, err := msgpack.Marshal(f.values)
	f.mu.RUnlock()
	if err != nil {
		return canonerrors.NewIOError(canonerrors.ErrCodeStorage, "failed to encode store", err)
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return canonerrors.NewIOError(canonerrors.ErrCodeStorage, "failed to create store directory", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".canon-store-*")
	if err != nil {
		return canonerrors.NewIOError(canonerrors.ErrCodeStorage, "failed to create temp file", err)
	}
	if _, err := tmp.Write(packed); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return canonerrors.NewIOError(canonerrors.ErrCodeStorage, "failed to write store", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return canonerrors.NewIOError(canonerrors.ErrCodeStorage, "failed to close store", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return canonerrors.NewIOError(canonerrors.ErrCodeStorage, "failed to replace store", err)
	}
	return nil
}
