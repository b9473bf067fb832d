// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KV defines a durable key-value slot store.
// This abstraction allows swapping storage backends (SQLite, plain files,
// memory) without changing the repository layer.
type KV interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	// The write is all-or-nothing: readers see either the old or the new value.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}
