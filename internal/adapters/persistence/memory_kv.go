package persistence

import (
	"context"
	"sync"

	"github.com/example/pickup/internal/ports/secondary"
)

// MemoryKeyValueStore implements secondary.KeyValueStore in process memory.
// Used when no database path is configured and in tests.
type MemoryKeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKeyValueStore creates an empty MemoryKeyValueStore.
func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{values: make(map[string]string)}
}

// Get returns the value for key.
func (s *MemoryKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set replaces the value for key.
func (s *MemoryKeyValueStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes key.
func (s *MemoryKeyValueStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Ensure MemoryKeyValueStore implements the interface
var _ secondary.KeyValueStore = (*MemoryKeyValueStore)(nil)
