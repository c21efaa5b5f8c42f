/*
Package storage persists the small amount of client state that must survive
restarts: the bearer token, the selected language and the last bound session.
*/
package storage

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Fixed keys of the durable client state.
const (
	KeyToken       = "token"
	KeyLanguage    = "pgrkam_language"
	KeyLastSession = "last_session"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store is a durable string key/value store.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open returns the store selected by backend, rooted in dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(dir, "state.yaml"))
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "state.db"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// MemoryStore keeps state in process memory only.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
