package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/catalog"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/telemetry"
)

// Service orchestrates full catalog sync runs. A run resolves credentials,
// exchanges them for a token, paginates the marketplace catalog and upserts
// each page into the product store. Pages are paced by a rate limiter so the
// provider sees at most one list call per configured interval.
type Service struct {
	resolver integration.CredentialResolver
	tokens   integration.TokenSource
	gateways integration.GatewayRegistry
	products catalog.ProductRepository
	metrics  *telemetry.SyncMetrics
	logger   *zap.Logger

	pageInterval time.Duration
}

// NewService creates a sync orchestrator
func NewService(
	cfg config.SyncConfig,
	resolver integration.CredentialResolver,
	tokens integration.TokenSource,
	gateways integration.GatewayRegistry,
	products catalog.ProductRepository,
	metrics *telemetry.SyncMetrics,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.PageInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Service{
		resolver:     resolver,
		tokens:       tokens,
		gateways:     gateways,
		products:     products,
		metrics:      metrics,
		logger:       logger,
		pageInterval: interval,
	}
}

// RunSync executes one full catalog sync for an (organization, marketplace)
// pair. The returned result always carries the terminal status and counts;
// the error explains a Failed status. Auth failures terminate before any
// page with zero counts; a fetch failure terminates with the counts
// accumulated so far. A failed page write only skips that page's items, the
// run keeps paginating.
func (s *Service) RunSync(ctx context.Context, marketplace integration.Marketplace, organizationID uuid.UUID) (*integration.SyncRunResult, error) {
	started := time.Now()
	result := &integration.SyncRunResult{
		Marketplace:    marketplace,
		OrganizationID: organizationID.String(),
		Status:         integration.SyncRunFailed,
		StartedAt:      started,
	}
	defer func() {
		result.Duration = time.Since(started)
		s.record(ctx, result)
	}()

	gateway, err := s.gateways.Gateway(marketplace)
	if err != nil {
		return result, err
	}

	creds, err := s.resolver.Resolve(ctx, marketplace, organizationID)
	if err != nil {
		s.logger.Warn("sync run aborted, credentials unavailable",
			zap.String("marketplace", marketplace.String()),
			zap.String("organization_id", organizationID.String()),
			zap.Error(err),
		)
		return result, err
	}

	token, err := s.tokens.AccessToken(ctx, creds)
	if err != nil {
		s.logger.Warn("sync run aborted, token exchange failed",
			zap.String("marketplace", marketplace.String()),
			zap.String("organization_id", organizationID.String()),
			zap.Error(err),
		)
		return result, err
	}
	session := integration.NewSession(token, creds)

	limiter := rate.NewLimiter(rate.Every(s.pageInterval), 1)
	page := integration.PageRequest{}
	pages := 0

	for {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		catalogPage, err := gateway.ListCatalog(ctx, session, page)
		if err != nil {
			s.logger.Error("sync run terminated, catalog fetch failed",
				zap.String("marketplace", marketplace.String()),
				zap.String("organization_id", organizationID.String()),
				zap.Int("pages_fetched", pages),
				zap.Error(err),
			)
			return result, fmt.Errorf("fetching catalog page: %w", err)
		}
		pages++

		products, skipped := s.mapItems(organizationID, marketplace, catalogPage.Items)
		result.ItemsFailed += skipped

		if len(products) > 0 {
			written, err := s.products.BatchUpsert(ctx, organizationID, products)
			result.ItemsProcessed += written
			if err != nil {
				// The unwritten remainder is lost but the run continues; the
				// next run's identity-key upserts repair it
				result.ItemsFailed += len(products) - written
				s.logger.Error("sync page write failed",
					zap.String("marketplace", marketplace.String()),
					zap.Int("items_written", written),
					zap.Int("items_lost", len(products)-written),
					zap.Error(err),
				)
			}
		}

		// An empty page ends the run even when the provider hands back a
		// next-page token, otherwise a misbehaving provider keeps it paging
		if !catalogPage.HasMore || len(catalogPage.Items) == 0 {
			break
		}
		page = catalogPage.Next
	}

	result.Status = integration.SyncRunCompleted
	s.logger.Info("sync run completed",
		zap.String("marketplace", marketplace.String()),
		zap.String("organization_id", organizationID.String()),
		zap.Int("pages", pages),
		zap.Int("items_processed", result.ItemsProcessed),
		zap.Int("items_failed", result.ItemsFailed),
	)
	return result, nil
}

// mapItems converts provider items to product records. Items without a SKU
// cannot be keyed and are counted as failed.
func (s *Service) mapItems(organizationID uuid.UUID, marketplace integration.Marketplace, items []integration.CatalogItem) ([]*catalog.Product, int) {
	products := make([]*catalog.Product, 0, len(items))
	skipped := 0
	for _, item := range items {
		product, err := catalog.NewProduct(organizationID, marketplace.String(), item.SKU)
		if err != nil {
			skipped++
			s.logger.Warn("skipping catalog item without usable sku",
				zap.String("marketplace", marketplace.String()),
				zap.String("external_id", item.ExternalID),
			)
			continue
		}
		product.ApplySnapshot(catalog.Snapshot{
			ExternalID:        item.ExternalID,
			Title:             item.Title,
			Brand:             item.Brand,
			Category:          item.Category,
			ImageURL:          item.ImageURL,
			Price:             item.Price,
			Currency:          item.Currency,
			InventoryQuantity: item.InventoryQuantity,
		})
		products = append(products, product)
	}
	return products, skipped
}

func (s *Service) record(ctx context.Context, result *integration.SyncRunResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordRun(ctx,
		result.Marketplace.String(),
		string(result.Status),
		result.ItemsProcessed,
		result.ItemsFailed,
		result.Duration,
	)
}
