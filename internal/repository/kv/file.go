package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"artkit-backend/internal/domain"
)

// FileStore keeps one JSON file per key under a base directory. It is
// the default backend: durable across restarts with no external
// service, mirroring the on-device storage the mobile client uses.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create kv directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	path := s.path(key)

	// Write-then-rename so a crashed write never leaves a truncated file.
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace key %q: %w", key, err)
	}
	return nil
}

// path maps a key to a filename. Keys may contain ":" from namespacing;
// escape anything the filesystem would object to.
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}
