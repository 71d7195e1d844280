// Package cache provides key/value stores for dependency cache manifests.
//
// A manifest records which paths were cached under a primary key so a
// later run can report a hit without rescanning the lock files. Stores:
//
//   - [FileCache]: one JSON file per key under a local directory (default)
//   - [RedisCache]: a shared Redis instance, for self-hosted runner fleets
//   - [NullCache]: never stores anything
//
// All stores are safe for use by a single process; entries carry an
// optional TTL.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry the store holds and returns how many were
	// removed.
	Clear(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}
