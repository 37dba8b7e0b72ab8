package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// RedisStore implements TTLStore on Redis with JSON-encoded values. Keys are
// namespaced by prefix so Clear only touches entries this store owns.
type RedisStore[T any] struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed TTL store and verifies connectivity
func NewRedisStore[T any](cfg config.RedisConfig, prefix string) (*RedisStore[T], error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore[T]{client: client, prefix: prefix}, nil
}

func (s *RedisStore[T]) key(k string) string {
	return s.prefix + ":" + k
}

// Get returns the cached value and true when present; Redis handles expiry
func (s *RedisStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis get: %w", err)
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, false, fmt.Errorf("redis get: decode cached value: %w", err)
	}
	return value, true, nil
}

// Set stores the JSON-encoded value under key for the given TTL
func (s *RedisStore[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis set: encode value: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a single entry
func (s *RedisStore[T]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Clear removes every entry under this store's prefix
func (s *RedisStore[T]) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection
func (s *RedisStore[T]) Close() error {
	return s.client.Close()
}
