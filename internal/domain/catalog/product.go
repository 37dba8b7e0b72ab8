package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product record
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a normalized marketplace product record. It is identified by
// (organization, marketplace, sku); the same SKU may exist once per
// marketplace within an organization.
type Product struct {
	shared.OrganizationEntity
	Marketplace       string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_products_org_marketplace_sku,priority:2"`
	SKU               string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_org_marketplace_sku,priority:3"`
	ExternalID        string          `gorm:"type:varchar(100);index"`
	Title             string          `gorm:"type:varchar(500)"`
	Brand             string          `gorm:"type:varchar(200)"`
	Category          string          `gorm:"type:varchar(200)"`
	ImageURL          string          `gorm:"type:text"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency          string          `gorm:"type:varchar(3);not null;default:'USD'"`
	InventoryQuantity int64           `gorm:"not null;default:0"`
	Status            ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	SyncedAt          time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product record for an organization
func NewProduct(organizationID uuid.UUID, marketplace, sku string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID is required")
	}

	now := time.Now()
	return &Product{
		OrganizationEntity: shared.NewOrganizationEntity(organizationID),
		Marketplace:        marketplace,
		SKU:                sku,
		Price:              decimal.Zero,
		Currency:           "USD",
		Status:             ProductStatusActive,
		SyncedAt:           now,
	}, nil
}

// Snapshot carries the provider-sourced fields applied on every sync write
type Snapshot struct {
	ExternalID        string
	Title             string
	Brand             string
	Category          string
	ImageURL          string
	Price             decimal.Decimal
	Currency          string
	InventoryQuantity int64
}

// ApplySnapshot overwrites the provider-sourced fields and refreshes the
// update and sync timestamps. CreatedAt is never touched.
func (p *Product) ApplySnapshot(s Snapshot) {
	p.ExternalID = s.ExternalID
	p.Title = s.Title
	p.Brand = s.Brand
	p.Category = s.Category
	p.ImageURL = s.ImageURL
	p.Price = s.Price
	if s.Currency != "" {
		p.Currency = s.Currency
	}
	p.InventoryQuantity = s.InventoryQuantity
	p.Status = ProductStatusActive

	now := time.Now()
	p.UpdatedAt = now
	p.SyncedAt = now
}

// Deactivate marks the product inactive without purging its history
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
}

// IsActive returns true if the product has not been soft-deleted
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
