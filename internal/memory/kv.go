// Package memory provides process-local backends used by tests and by
// the "memory" store driver.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/rpggio/learnerhours/internal/repository"
)

// KVStore implements repository.KVStore in memory.
type KVStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// NewKVStore creates an empty KVStore.
func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, repository.ErrClosed
	}

	value, ok := s.values[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put replaces the value stored under key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return repository.ErrClosed
	}

	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Close releases the stored values.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.values = nil
	return nil
}
