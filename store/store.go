// Package store provides the namespaced key-value handoff layer between the
// conversation core and the external renderer. It is a handoff mechanism,
// not a durable store: no TTL, no eviction.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key or namespace has no value.
var ErrNotFound = errors.New("store: not found")

// Store hands opaque serialized documents across the core/renderer
// boundary. Keys are namespaced by a caller-supplied prefix via Key().
type Store interface {
	// Put writes a value under a key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Get reads the value for a key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Latest returns the most recently written key under a namespace
	// prefix, or ErrNotFound when the namespace is empty.
	Latest(ctx context.Context, prefix string) (string, error)
}

// Key composes a namespaced key from a prefix and an identifier.
func Key(prefix, id string) string {
	return prefix + "." + id
}
