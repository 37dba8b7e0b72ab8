package cache

import (
	"context"
	"time"
)

// TTLStore is a key-value store with per-entry expiry. Writes are idempotent
// overwrites (last-writer-wins), which makes the store safe for concurrent
// cache-fill races: every racer stores an equivalent fresh value.
type TTLStore[T any] interface {
	// Get returns the cached value and true when present and unexpired
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores the value under key for the given TTL
	Set(ctx context.Context, key string, value T, ttl time.Duration) error

	// Delete removes a single entry
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this store
	Clear(ctx context.Context) error
}
