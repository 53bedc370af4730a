// Package storage provides the durable key/value stores the session layer
// persists into.  Each key is written atomically on its own; nothing spans
// two keys.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// ErrCorrupt is returned by Get when the backing document cannot be
// parsed.  The next write replaces the document.
var ErrCorrupt = errors.New("storage: corrupt document")

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes the keys.  Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
