package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed marketplace API response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// defaultCurrency is assumed when a provider omits the price currency
const defaultCurrency = "USD"

const (
	amazonListingsPath  = "/listings/2021-08-01/items"
	amazonInventoryPath = "/fba/inventory/v1/summaries"
	amazonIncludedData  = "summaries,offers,fulfillmentAvailability"
)

// AmazonAdapter implements integration.Gateway against the Selling Partner
// API. Listing reads and writes go through the Listings Items API; stock
// reads go through FBA inventory summaries. Every request carries the LWA
// access token in the x-amz-access-token header.
type AmazonAdapter struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// NewAmazonAdapter creates an Amazon SP-API gateway
func NewAmazonAdapter(cfg config.AmazonConfig, pageSize int) *AmazonAdapter {
	return &AmazonAdapter{
		baseURL:  strings.TrimRight(cfg.APIBaseURL, "/"),
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Marketplace returns the marketplace this gateway talks to
func (a *AmazonAdapter) Marketplace() integration.Marketplace {
	return integration.MarketplaceAmazon
}

// ListCatalog fetches one page of the seller's listings. Pagination is by
// the opaque nextToken Amazon returns; an empty Next token or an empty page
// means the end.
func (a *AmazonAdapter) ListCatalog(ctx context.Context, session integration.Session, page integration.PageRequest) (*integration.CatalogPage, error) {
	pageSize := page.Limit
	if pageSize <= 0 {
		pageSize = a.pageSize
	}

	query := url.Values{}
	query.Set("marketplaceIds", session.MarketplaceID)
	query.Set("includedData", amazonIncludedData)
	query.Set("pageSize", strconv.Itoa(pageSize))
	if page.Token != "" {
		query.Set("pageToken", page.Token)
	}

	path := fmt.Sprintf("%s/%s", amazonListingsPath, url.PathEscape(session.SellerID))
	body, err := a.doRequest(ctx, session, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var resp amazonListingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse listings response: %v", integration.ErrInvalidResponse, err)
	}

	result := &integration.CatalogPage{
		Items: make([]integration.CatalogItem, 0, len(resp.Items)),
	}
	for idx := range resp.Items {
		result.Items = append(result.Items, resp.Items[idx].toCatalogItem())
	}
	// A token on an empty page does not continue the listing; some responses
	// carry a stale nextToken past the last item and honoring it would loop
	if len(resp.Items) > 0 && resp.Pagination != nil && resp.Pagination.NextToken != "" {
		result.Next = integration.PageRequest{Token: resp.Pagination.NextToken, Limit: pageSize}
		result.HasMore = true
	}
	return result, nil
}

// GetItem fetches a single listing by SKU
func (a *AmazonAdapter) GetItem(ctx context.Context, session integration.Session, id string) (*integration.CatalogItem, error) {
	query := url.Values{}
	query.Set("marketplaceIds", session.MarketplaceID)
	query.Set("includedData", amazonIncludedData)

	body, err := a.doRequest(ctx, session, http.MethodGet, a.listingPath(session, id), query, nil)
	if err != nil {
		return nil, err
	}

	var item amazonListingsItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("%w: failed to parse listing response: %v", integration.ErrInvalidResponse, err)
	}
	catalogItem := item.toCatalogItem()
	if catalogItem.SKU == "" {
		catalogItem.SKU = id
	}
	return &catalogItem, nil
}

// UpdateItem patches listing attributes with JSON Patch replace operations
func (a *AmazonAdapter) UpdateItem(ctx context.Context, session integration.Session, sku string, patch integration.ItemPatch) error {
	patches := make([]amazonPatch, 0, 2)
	if patch.Title != "" {
		patches = append(patches, amazonPatch{
			Op:   "replace",
			Path: "/attributes/item_name",
			Value: []any{map[string]any{
				"value":          patch.Title,
				"marketplace_id": session.MarketplaceID,
			}},
		})
	}
	if patch.Description != "" {
		patches = append(patches, amazonPatch{
			Op:   "replace",
			Path: "/attributes/product_description",
			Value: []any{map[string]any{
				"value":          patch.Description,
				"marketplace_id": session.MarketplaceID,
			}},
		})
	}
	if len(patches) == 0 {
		return nil
	}
	return a.patchListing(ctx, session, sku, patches)
}

// GetInventory fetches the FBA inventory summary for a SKU
func (a *AmazonAdapter) GetInventory(ctx context.Context, session integration.Session, sku string) (*integration.InventorySummary, error) {
	query := url.Values{}
	query.Set("granularityType", "Marketplace")
	query.Set("granularityId", session.MarketplaceID)
	query.Set("marketplaceIds", session.MarketplaceID)
	query.Set("sellerSkus", sku)
	query.Set("details", "true")

	body, err := a.doRequest(ctx, session, http.MethodGet, amazonInventoryPath, query, nil)
	if err != nil {
		return nil, err
	}

	var resp amazonFBAInventoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse inventory response: %v", integration.ErrInvalidResponse, err)
	}
	for _, summary := range resp.Payload.InventorySummaries {
		if summary.SellerSKU == sku {
			return &integration.InventorySummary{
				SKU:               sku,
				FulfillableAmount: summary.InventoryDetails.FulfillableQuantity,
				TotalAmount:       summary.TotalQuantity,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: no inventory summary for sku %s", integration.ErrInvalidResponse, sku)
}

// UpdateInventory writes the available quantity through the listing's
// fulfillment availability attribute
func (a *AmazonAdapter) UpdateInventory(ctx context.Context, session integration.Session, sku string, quantity int64) error {
	return a.patchListing(ctx, session, sku, []amazonPatch{{
		Op:   "replace",
		Path: "/attributes/fulfillment_availability",
		Value: []any{map[string]any{
			"fulfillment_channel_code": "DEFAULT",
			"quantity":                 quantity,
		}},
	}})
}

// UpdatePrice writes the listed price through the purchasable offer attribute
func (a *AmazonAdapter) UpdatePrice(ctx context.Context, session integration.Session, sku string, price integration.PriceUpdate) error {
	currency := price.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return a.patchListing(ctx, session, sku, []amazonPatch{{
		Op:   "replace",
		Path: "/attributes/purchasable_offer",
		Value: []any{map[string]any{
			"marketplace_id": session.MarketplaceID,
			"currency":       currency,
			"our_price": []any{map[string]any{
				"schedule": []any{map[string]any{
					"value_with_tax": price.Amount,
				}},
			}},
		}},
	}})
}

func (a *AmazonAdapter) patchListing(ctx context.Context, session integration.Session, sku string, patches []amazonPatch) error {
	query := url.Values{}
	query.Set("marketplaceIds", session.MarketplaceID)

	payload := amazonPatchRequest{
		ProductType: "PRODUCT",
		Patches:     patches,
	}
	_, err := a.doRequest(ctx, session, http.MethodPatch, a.listingPath(session, sku), query, payload)
	return err
}

func (a *AmazonAdapter) listingPath(session integration.Session, sku string) string {
	return fmt.Sprintf("%s/%s/%s", amazonListingsPath, url.PathEscape(session.SellerID), url.PathEscape(sku))
}

// doRequest performs one SP-API request and returns the raw body. Non-2xx
// responses become *ProviderError.
func (a *AmazonAdapter) doRequest(ctx context.Context, session integration.Session, method, path string, query url.Values, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("amazon: failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("amazon: failed to create request: %w", err)
	}
	req.Header.Set("x-amz-access-token", session.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("amazon: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &integration.ProviderError{
			Marketplace: integration.MarketplaceAmazon,
			Status:      resp.StatusCode,
		}
	}
	return body, nil
}

// Ensure AmazonAdapter implements Gateway interface
var _ integration.Gateway = (*AmazonAdapter)(nil)
