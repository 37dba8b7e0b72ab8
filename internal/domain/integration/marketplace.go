package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// Credential errors
	ErrNotConfigured     = errors.New("integration: no active credentials configured")
	ErrInvalidCredential = errors.New("integration: credential set is missing required fields")

	// Token errors
	ErrAuthFailed = errors.New("integration: marketplace token exchange failed")

	// Marketplace errors
	ErrInvalidMarketplace = errors.New("integration: unsupported marketplace")
	ErrInvalidResponse    = errors.New("integration: invalid marketplace response")
	ErrUnavailable        = errors.New("integration: marketplace temporarily unavailable")
)

// ProviderError represents a non-2xx response from a marketplace API.
// The gateway does not retry; callers decide how to react to the status.
type ProviderError struct {
	Marketplace Marketplace
	Status      int
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("integration: %s API returned HTTP %d", e.Marketplace, e.Status)
}

// AsProviderError unwraps err into a ProviderError if it carries one
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Marketplace
// ---------------------------------------------------------------------------

// Marketplace identifies an external e-commerce platform
type Marketplace string

const (
	// MarketplaceAmazon represents the Amazon Selling Partner API
	MarketplaceAmazon Marketplace = "amazon"
	// MarketplaceWalmart represents the Walmart Marketplace API
	MarketplaceWalmart Marketplace = "walmart"
)

// IsValid returns true if the marketplace is supported
func (m Marketplace) IsValid() bool {
	switch m {
	case MarketplaceAmazon, MarketplaceWalmart:
		return true
	default:
		return false
	}
}

// String returns the string representation of Marketplace
func (m Marketplace) String() string {
	return string(m)
}

// ParseMarketplace converts a string into a Marketplace
func ParseMarketplace(s string) (Marketplace, error) {
	m := Marketplace(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMarketplace, s)
	}
	return m, nil
}

// Marketplaces returns all supported marketplaces
func Marketplaces() []Marketplace {
	return []Marketplace{MarketplaceAmazon, MarketplaceWalmart}
}

// ---------------------------------------------------------------------------
// Catalog value objects
// ---------------------------------------------------------------------------

// CatalogItem is a provider product record normalized to the fields the sync
// engine stores. SKU is the seller-defined identifier; items without one
// cannot be persisted.
type CatalogItem struct {
	// SKU is the seller-defined product identifier
	SKU string
	// ExternalID is the provider item id (ASIN for Amazon)
	ExternalID string
	// Title is the product name
	Title string
	// Brand is the product brand
	Brand string
	// Category is the provider category or product type
	Category string
	// ImageURL is the primary product image
	ImageURL string
	// Price is the current listed price, zero when the provider omits it
	Price decimal.Decimal
	// Currency is the price currency (default: USD)
	Currency string
	// InventoryQuantity is the available quantity when the listing carries one
	InventoryQuantity int64
}

// PageRequest addresses one page of a marketplace catalog listing. Amazon
// consumes the opaque Token; Walmart consumes Limit/Offset.
type PageRequest struct {
	Token  string
	Limit  int
	Offset int
}

// CatalogPage is one page of catalog results. HasMore is false when the
// provider signalled the end of the listing.
type CatalogPage struct {
	Items   []CatalogItem
	Next    PageRequest
	HasMore bool
}

// InventorySummary reports stock levels for a single SKU
type InventorySummary struct {
	SKU               string
	FulfillableAmount int64
	TotalAmount       int64
}

// ItemPatch carries the mutable listing attributes for an item update
type ItemPatch struct {
	Title       string
	Description string
}

// PriceUpdate carries a price write for a single SKU
type PriceUpdate struct {
	Amount   decimal.Decimal
	Currency string
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// Session is the per-call authentication context a gateway needs. Token is
// the short-lived bearer token from a TokenSource; SellerID and MarketplaceID
// come from the credential set and are only meaningful for Amazon.
type Session struct {
	Token         string
	SellerID      string
	MarketplaceID string
}

// NewSession combines an access token with the credential-set identity fields
func NewSession(token string, creds *CredentialSet) Session {
	return Session{
		Token:         token,
		SellerID:      creds.Fields.SellerID,
		MarketplaceID: creds.Fields.MarketplaceID,
	}
}

// Gateway is the port interface for a marketplace product/inventory/pricing
// API. Implementations live in the infrastructure layer, one per marketplace.
// All methods take a Session built from a TokenSource token; the gateway
// itself never resolves credentials. Non-2xx provider responses are returned
// as *ProviderError and are never retried here.
type Gateway interface {
	// Marketplace returns the marketplace this gateway talks to
	Marketplace() Marketplace

	// ListCatalog fetches one page of the seller's catalog
	ListCatalog(ctx context.Context, session Session, page PageRequest) (*CatalogPage, error)

	// GetItem fetches a single catalog item by SKU or provider id
	GetItem(ctx context.Context, session Session, id string) (*CatalogItem, error)

	// UpdateItem updates listing attributes for a SKU
	UpdateItem(ctx context.Context, session Session, sku string, patch ItemPatch) error

	// GetInventory fetches the inventory summary for a SKU
	GetInventory(ctx context.Context, session Session, sku string) (*InventorySummary, error)

	// UpdateInventory writes the available quantity for a SKU
	UpdateInventory(ctx context.Context, session Session, sku string, quantity int64) error

	// UpdatePrice writes the listed price for a SKU
	UpdatePrice(ctx context.Context, session Session, sku string, price PriceUpdate) error
}

// GatewayRegistry selects the gateway for a marketplace at call time
type GatewayRegistry interface {
	// Gateway returns the gateway for the given marketplace
	Gateway(marketplace Marketplace) (Gateway, error)

	// Marketplaces returns the marketplaces with a registered gateway
	Marketplaces() []Marketplace
}

// TokenSource exchanges a credential set for a short-lived access token,
// caching per credential-set fingerprint until near expiry
type TokenSource interface {
	AccessToken(ctx context.Context, creds *CredentialSet) (string, error)
}

// ---------------------------------------------------------------------------
// Sync run result
// ---------------------------------------------------------------------------

// SyncRunStatus is the terminal state of a sync run
type SyncRunStatus string

const (
	// SyncRunCompleted indicates the run paginated to the end of the catalog
	SyncRunCompleted SyncRunStatus = "Completed"
	// SyncRunFailed indicates the run terminated on an auth or fetch failure
	SyncRunFailed SyncRunStatus = "Failed"
)

// SyncRunResult summarizes one catalog sync run. It is returned to the caller
// and logged; it is never persisted.
type SyncRunResult struct {
	Marketplace    Marketplace   `json:"marketplace"`
	OrganizationID string        `json:"organization_id"`
	Status         SyncRunStatus `json:"status"`
	ItemsProcessed int           `json:"items_processed"`
	ItemsFailed    int           `json:"items_failed"`
	Duration       time.Duration `json:"duration_ms"`
	StartedAt      time.Time     `json:"started_at"`
}
