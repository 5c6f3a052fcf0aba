package memory

import (
	"context"
	"sync"

	"github.com/mcoot/spiderleague/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Entries are lost when the process exits.
type Storage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		entries: make(map[string][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *Storage) Close() error {
	return nil
}
