package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryStore implements TTLStore using an in-memory map. Suitable for
// process-local caches (access tokens, resolved credentials) and testing.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
	clock   Clock
}

// NewMemoryStore creates a new in-memory TTL store
func NewMemoryStore[T any](clock Clock) *MemoryStore[T] {
	if clock == nil {
		clock = SystemClock()
	}
	return &MemoryStore[T]{
		entries: make(map[string]memoryEntry[T]),
		clock:   clock,
	}
}

// Get returns the cached value and true when present and unexpired. Expired
// entries are dropped on access.
func (s *MemoryStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false, nil
	}
	if s.clock.Now().After(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a racer may have refreshed it
		if cur, ok := s.entries[key]; ok && s.clock.Now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false, nil
	}
	return e.value, true, nil
}

// Set stores the value under key for the given TTL
func (s *MemoryStore[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry[T]{
		value:     value,
		expiresAt: s.clock.Now().Add(ttl),
	}
	return nil
}

// Delete removes a single entry
func (s *MemoryStore[T]) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Clear removes every entry
func (s *MemoryStore[T]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]memoryEntry[T])
	return nil
}

// Len returns the number of entries, including not-yet-collected expired ones
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
