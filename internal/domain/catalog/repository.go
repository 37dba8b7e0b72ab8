package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
)

// ListQuery filters an organization's product listing. Marketplace is a
// post-fetch predicate: it narrows the returned page, it is not an index
// dimension, so filtered pages may carry fewer items than the limit.
type ListQuery struct {
	Marketplace string
	shared.ListOptions
}

// ProductRepository is the port interface for normalized product persistence.
// All operations are organization-scoped. Upserts key on the
// (organization, marketplace, sku) identity: created_at is written once,
// updated_at and synced_at refresh on every write.
type ProductRepository interface {
	// Get finds a product by SKU within an organization
	Get(ctx context.Context, organizationID uuid.UUID, sku string) (*Product, error)

	// List returns a cursor-paginated product listing ordered by creation
	// time descending
	List(ctx context.Context, organizationID uuid.UUID, query ListQuery) (*shared.Page[Product], error)

	// Upsert inserts or updates a single product by identity key
	Upsert(ctx context.Context, product *Product) error

	// BatchUpsert writes products in bounded-size chunks, sequentially, and
	// reports how many records were durably written. On error the count
	// covers the chunks that completed before the failure.
	BatchUpsert(ctx context.Context, organizationID uuid.UUID, products []*Product) (int, error)

	// Delete marks a product inactive; history is retained
	Delete(ctx context.Context, organizationID uuid.UUID, sku string) error
}
