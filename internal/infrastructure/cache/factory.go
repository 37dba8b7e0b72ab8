package cache

import (
	"go.uber.org/zap"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// NewStore creates a TTL store backed by Redis when Redis is enabled and
// reachable, falling back to an in-memory store otherwise. In-memory stores
// do not share state across instances; multi-instance deployments should run
// with Redis so credential-cache invalidation reaches every node.
func NewStore[T any](cfg config.RedisConfig, prefix string, logger *zap.Logger) TTLStore[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return NewMemoryStore[T](nil)
	}

	store, err := NewRedisStore[T](cfg, prefix)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory cache",
			zap.String("prefix", prefix),
			zap.Error(err),
		)
		return NewMemoryStore[T](nil)
	}

	logger.Info("Using Redis-backed cache", zap.String("prefix", prefix))
	return store
}
