// Package memory provides an in-memory implementation of storage.KV.
// It backs the "memory" driver and lets tests inject read and write failures.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/mmynk/giftwiser/internal/storage"
)

var _ storage.KV = (*Store)(nil)

// Store is a map-backed storage.KV.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	getErr error
	putErr error
	puts   int
}

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return bytes.Clone(v), nil
}

// Put stores a copy of value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = bytes.Clone(value)
	s.puts++
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// FailGet makes every subsequent Get return err. A nil err clears the failure.
func (s *Store) FailGet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailPut makes every subsequent Put return err. A nil err clears the failure.
func (s *Store) FailPut(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErr = err
}

// Puts returns the number of successful Put calls.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
