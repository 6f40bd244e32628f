// Package storage provides the persistence collaborator used by the portfolio
// store: a load/save contract over one serialized string per key. Each key is
// backed by a flat JSON file in the configured directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the load/save contract the portfolio store persists through
type Store interface {
	// Load returns the serialized value for key, or ok=false when absent
	Load(key string) (value string, ok bool, err error)
	// Save writes the serialized value for key
	Save(key, value string) error
}

// FileStore persists each key as a file under a base directory
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Load reads the value stored for key; a missing file means absent, not an error
func (fs *FileStore) Load(key string) (string, bool, error) {
	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Save writes the value for key atomically via a temp file rename
func (fs *FileStore) Save(key, value string) error {
	path := fs.path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (fs *FileStore) path(key string) string {
	// Keys are internal identifiers, but keep the filename safe anyway
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(fs.dir, name+".json")
}
