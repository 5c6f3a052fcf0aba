package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/spiderleague/internal/storage"
)

// Storage keeps local entries as one JSON object in a file. Every write
// rewrites the file through a temporary file and a rename.
type Storage struct {
	path string
	mu   sync.Mutex
}

// New creates a file storage at path. The file is created on first write.
func New(path string) *Storage {
	return &Storage{path: path}
}

// DefaultPath returns ~/.spiderleague/local.json, or a relative fallback
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".spiderleague", "local.json")
	}
	return filepath.Join(home, ".spiderleague", "local.json")
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	value, ok := entries[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return []byte(value), nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[key] = string(value)
	return s.write(entries)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.write(entries)
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) read() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil // No file yet is fine
		}
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *Storage) write(entries map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".local-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
