package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps all keys in one YAML document, rewritten on every change.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fs.values); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if fs.values == nil {
		fs.values = make(map[string]string)
	}
	return fs, nil
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, existed := fs.values[key]
	fs.values[key] = value
	if err := fs.flush(); err != nil {
		if existed {
			fs.values[key] = prev
		} else {
			delete(fs.values, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, existed := fs.values[key]
	if !existed {
		return nil
	}
	delete(fs.values, key)
	if err := fs.flush(); err != nil {
		fs.values[key] = prev
		return err
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

// flush writes through a temp file so a crash never leaves a truncated document.
func (fs *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(fs.values)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
