package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrStorage indicates the underlying medium is unavailable or rejected a write.
var ErrStorage = errors.New("storage unavailable")

// Medium is a persistent key-value store holding JSON documents.
type Medium interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping verifies the medium is reachable.
	Ping(ctx context.Context) error
	// Close releases resources held by the medium.
	Close() error
}
