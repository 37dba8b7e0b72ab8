package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/catalog"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
)

// Service exposes the synced product store and routes listing maintenance
// writes back to the owning marketplace
type Service struct {
	products catalog.ProductRepository
	resolver integration.CredentialResolver
	tokens   integration.TokenSource
	gateways integration.GatewayRegistry
	logger   *zap.Logger
}

// NewService creates a catalog application service
func NewService(
	products catalog.ProductRepository,
	resolver integration.CredentialResolver,
	tokens integration.TokenSource,
	gateways integration.GatewayRegistry,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products: products,
		resolver: resolver,
		tokens:   tokens,
		gateways: gateways,
		logger:   logger,
	}
}

// ListProducts returns a cursor-paginated page of the organization's synced
// products, optionally narrowed to one marketplace
func (s *Service) ListProducts(ctx context.Context, organizationID uuid.UUID, query catalog.ListQuery) (*shared.Page[catalog.Product], error) {
	if query.Marketplace != "" {
		if _, err := integration.ParseMarketplace(query.Marketplace); err != nil {
			return nil, err
		}
	}
	return s.products.List(ctx, organizationID, query)
}

// GetProduct returns one synced product by SKU
func (s *Service) GetProduct(ctx context.Context, organizationID uuid.UUID, sku string) (*catalog.Product, error) {
	return s.products.Get(ctx, organizationID, sku)
}

// DeleteProduct marks a synced product inactive
func (s *Service) DeleteProduct(ctx context.Context, organizationID uuid.UUID, sku string) error {
	return s.products.Delete(ctx, organizationID, sku)
}

// UpdateListing pushes title and description changes to the marketplace and
// mirrors them into the local record when it exists
func (s *Service) UpdateListing(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace, sku string, patch integration.ItemPatch) error {
	gateway, session, err := s.session(ctx, organizationID, marketplace)
	if err != nil {
		return err
	}
	if err := gateway.UpdateItem(ctx, session, sku, patch); err != nil {
		return err
	}

	product, err := s.products.Get(ctx, organizationID, sku)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil
		}
		return err
	}
	if patch.Title != "" {
		product.Title = patch.Title
	}
	return s.products.Upsert(ctx, product)
}

// GetInventory reads the live marketplace stock level for a SKU
func (s *Service) GetInventory(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace, sku string) (*integration.InventorySummary, error) {
	gateway, session, err := s.session(ctx, organizationID, marketplace)
	if err != nil {
		return nil, err
	}
	return gateway.GetInventory(ctx, session, sku)
}

// UpdateInventory pushes a stock level to the marketplace
func (s *Service) UpdateInventory(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace, sku string, quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	gateway, session, err := s.session(ctx, organizationID, marketplace)
	if err != nil {
		return err
	}
	return gateway.UpdateInventory(ctx, session, sku, quantity)
}

// UpdatePrice pushes a listed price to the marketplace
func (s *Service) UpdatePrice(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace, sku string, price integration.PriceUpdate) error {
	if price.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	gateway, session, err := s.session(ctx, organizationID, marketplace)
	if err != nil {
		return err
	}
	return gateway.UpdatePrice(ctx, session, sku, price)
}

// session resolves the gateway and an authenticated session for the pair
func (s *Service) session(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) (integration.Gateway, integration.Session, error) {
	gateway, err := s.gateways.Gateway(marketplace)
	if err != nil {
		return nil, integration.Session{}, err
	}
	creds, err := s.resolver.Resolve(ctx, marketplace, organizationID)
	if err != nil {
		return nil, integration.Session{}, err
	}
	token, err := s.tokens.AccessToken(ctx, creds)
	if err != nil {
		return nil, integration.Session{}, err
	}
	return gateway, integration.NewSession(token, creds), nil
}
