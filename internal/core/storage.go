package core

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage.Get for an unset key.
var ErrNotFound = errors.New("key not found")

// Storage is a durable key-value medium for JSON-serialized state.
// All three stores (events, session, theme) share one Storage.
type Storage interface {
	// Get returns the stored value, or ErrNotFound if key is unset.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
