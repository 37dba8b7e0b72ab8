package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/cache"
)

// Resolver implements integration.CredentialResolver on top of a Source with
// a short-TTL cache. Every set, cached or freshly fetched, is validated
// before it is handed out, so callers never see an incomplete set and no
// network call is made with one.
type Resolver struct {
	source Source
	store  cache.TTLStore[integration.CredentialSet]
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolver creates a caching credential resolver
func NewResolver(source Source, store cache.TTLStore[integration.CredentialSet], ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Resolve returns the pair's active credential set, from cache when fresh
func (r *Resolver) Resolve(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.CredentialSet, error) {
	if !marketplace.IsValid() {
		return nil, fmt.Errorf("%w: %q", integration.ErrInvalidMarketplace, marketplace)
	}

	key := cacheKey(organizationID, marketplace)
	if cached, ok, err := r.store.Get(ctx, key); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		// A broken cache backend degrades to a fetch, not a failure
		r.logger.Warn("credential cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return r.fetch(ctx, marketplace, organizationID)
}

// Refresh bypasses the cache, fetches from the source and repopulates
func (r *Resolver) Refresh(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.CredentialSet, error) {
	if !marketplace.IsValid() {
		return nil, fmt.Errorf("%w: %q", integration.ErrInvalidMarketplace, marketplace)
	}
	return r.fetch(ctx, marketplace, organizationID)
}

// ClearCache drops every cached credential set
func (r *Resolver) ClearCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.Clear(ctx); err != nil {
		r.logger.Warn("credential cache clear failed", zap.Error(err))
	}
}

func (r *Resolver) fetch(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.CredentialSet, error) {
	creds, err := r.source.Fetch(ctx, marketplace, organizationID)
	if err != nil {
		return nil, err
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(organizationID, marketplace)
	if err := r.store.Set(ctx, key, *creds, r.ttl); err != nil {
		r.logger.Warn("credential cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return creds, nil
}

func cacheKey(organizationID uuid.UUID, marketplace integration.Marketplace) string {
	return fmt.Sprintf("%s:%s", organizationID, marketplace)
}
