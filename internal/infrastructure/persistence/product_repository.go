package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/catalog"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
)

// defaultBatchSize bounds one batch-upsert statement when no size is configured
const defaultBatchSize = 25

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB, batchSize int) *GormProductRepository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &GormProductRepository{db: db, batchSize: batchSize}
}

// Get finds a product by SKU within an organization
func (r *GormProductRepository) Get(ctx context.Context, organizationID uuid.UUID, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND sku = ?", organizationID, sku).
		Order("marketplace ASC").
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List returns a cursor-paginated product listing ordered by creation time
// descending with the record ID as tiebreaker. The marketplace filter is
// applied after the fetch, so the cursor always advances even when a page
// returns fewer items than the limit.
func (r *GormProductRepository) List(ctx context.Context, organizationID uuid.UUID, query catalog.ListQuery) (*shared.Page[catalog.Product], error) {
	query.Normalize()

	q := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC, id DESC").
		Limit(query.Limit + 1)

	if query.Cursor != "" {
		cursor, err := shared.DecodeCursor(query.Cursor)
		if err != nil {
			return nil, err
		}
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var products []catalog.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}

	page := &shared.Page[catalog.Product]{}
	if len(products) > query.Limit {
		products = products[:query.Limit]
		last := products[len(products)-1]
		page.NextCursor = shared.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	if query.Marketplace == "" {
		page.Items = products
		return page, nil
	}
	page.Items = make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.Marketplace == query.Marketplace {
			page.Items = append(page.Items, p)
		}
	}
	return page, nil
}

// productUpsertClause updates the provider-sourced columns on identity-key
// conflict. created_at and id belong to the original row and are never
// rewritten.
var productUpsertClause = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "organization_id"},
		{Name: "marketplace"},
		{Name: "sku"},
	},
	DoUpdates: clause.AssignmentColumns([]string{
		"external_id", "title", "brand", "category", "image_url",
		"price", "currency", "inventory_quantity", "status",
		"updated_at", "synced_at",
	}),
}

// Upsert inserts or updates a single product by identity key
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Clauses(productUpsertClause).Create(product).Error
}

// BatchUpsert writes products in bounded-size chunks, sequentially. A failed
// chunk fails the call; earlier chunks stay written and are reflected in the
// returned count, which the identity-key upsert makes safe to retry.
func (r *GormProductRepository) BatchUpsert(ctx context.Context, organizationID uuid.UUID, products []*catalog.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	for _, p := range products {
		if p.OrganizationID != organizationID {
			return 0, shared.NewDomainError("ORGANIZATION_MISMATCH", "Product does not belong to the organization")
		}
	}
	written := 0
	for start := 0; start < len(products); start += r.batchSize {
		end := start + r.batchSize
		if end > len(products) {
			end = len(products)
		}
		chunk := products[start:end]
		if err := r.db.WithContext(ctx).Clauses(productUpsertClause).Create(&chunk).Error; err != nil {
			return written, err
		}
		written += len(chunk)
	}
	return written, nil
}

// Delete marks every product with the SKU inactive; history is retained
func (r *GormProductRepository) Delete(ctx context.Context, organizationID uuid.UUID, sku string) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("organization_id = ? AND sku = ?", organizationID, sku).
		Updates(map[string]any{
			"status":     catalog.ProductStatusInactive,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProductRepository implements ProductRepository interface
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
