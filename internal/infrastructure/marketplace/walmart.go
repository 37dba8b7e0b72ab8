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

	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

// WalmartAdapter implements integration.Gateway against the Walmart
// Marketplace API. Pagination is limit/offset; a page shorter than the limit
// ends the listing. Every request carries the bearer token in
// WM_SEC.ACCESS_TOKEN and a fresh WM_QOS.CORRELATION_ID.
type WalmartAdapter struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewWalmartAdapter creates a Walmart Marketplace API gateway
func NewWalmartAdapter(cfg config.WalmartConfig, limit int) *WalmartAdapter {
	return &WalmartAdapter{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		limit:   limit,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Marketplace returns the marketplace this gateway talks to
func (a *WalmartAdapter) Marketplace() integration.Marketplace {
	return integration.MarketplaceWalmart
}

// ListCatalog fetches one page of the seller's items. HasMore is inferred
// from a full page; Walmart has no explicit next-page marker.
func (a *WalmartAdapter) ListCatalog(ctx context.Context, session integration.Session, page integration.PageRequest) (*integration.CatalogPage, error) {
	limit := page.Limit
	if limit <= 0 {
		limit = a.limit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(page.Offset))

	body, err := a.doRequest(ctx, session, http.MethodGet, "/v3/items", query, nil)
	if err != nil {
		return nil, err
	}

	var resp walmartItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse items response: %v", integration.ErrInvalidResponse, err)
	}

	result := &integration.CatalogPage{
		Items: make([]integration.CatalogItem, 0, len(resp.ItemResponse)),
	}
	for idx := range resp.ItemResponse {
		result.Items = append(result.Items, resp.ItemResponse[idx].toCatalogItem())
	}
	if len(resp.ItemResponse) == limit {
		result.Next = integration.PageRequest{Limit: limit, Offset: page.Offset + limit}
		result.HasMore = true
	}
	return result, nil
}

// GetItem fetches a single item by SKU
func (a *WalmartAdapter) GetItem(ctx context.Context, session integration.Session, id string) (*integration.CatalogItem, error) {
	body, err := a.doRequest(ctx, session, http.MethodGet, "/v3/items/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}

	// Single-item reads come back in the same envelope as the listing
	var resp walmartItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse item response: %v", integration.ErrInvalidResponse, err)
	}
	if len(resp.ItemResponse) == 0 {
		return nil, fmt.Errorf("%w: empty item response for sku %s", integration.ErrInvalidResponse, id)
	}
	item := resp.ItemResponse[0].toCatalogItem()
	return &item, nil
}

// UpdateItem updates listing attributes for a SKU
func (a *WalmartAdapter) UpdateItem(ctx context.Context, session integration.Session, sku string, patch integration.ItemPatch) error {
	if patch.Title == "" && patch.Description == "" {
		return nil
	}
	payload := walmartItemUpdate{
		SKU:              sku,
		ProductName:      patch.Title,
		ShortDescription: patch.Description,
	}
	_, err := a.doRequest(ctx, session, http.MethodPut, "/v3/items/"+url.PathEscape(sku), nil, payload)
	return err
}

// GetInventory fetches the inventory level for a SKU
func (a *WalmartAdapter) GetInventory(ctx context.Context, session integration.Session, sku string) (*integration.InventorySummary, error) {
	query := url.Values{}
	query.Set("sku", sku)

	body, err := a.doRequest(ctx, session, http.MethodGet, "/v3/inventory", query, nil)
	if err != nil {
		return nil, err
	}

	var inv walmartInventory
	if err := json.Unmarshal(body, &inv); err != nil {
		return nil, fmt.Errorf("%w: failed to parse inventory response: %v", integration.ErrInvalidResponse, err)
	}
	return &integration.InventorySummary{
		SKU:               sku,
		FulfillableAmount: inv.Quantity.Amount,
		TotalAmount:       inv.Quantity.Amount,
	}, nil
}

// UpdateInventory writes the available quantity for a SKU
func (a *WalmartAdapter) UpdateInventory(ctx context.Context, session integration.Session, sku string, quantity int64) error {
	query := url.Values{}
	query.Set("sku", sku)

	payload := walmartInventory{
		SKU:      sku,
		Quantity: walmartQuantity{Unit: "EACH", Amount: quantity},
	}
	_, err := a.doRequest(ctx, session, http.MethodPut, "/v3/inventory", query, payload)
	return err
}

// UpdatePrice writes the listed price for a SKU
func (a *WalmartAdapter) UpdatePrice(ctx context.Context, session integration.Session, sku string, price integration.PriceUpdate) error {
	currency := price.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	payload := walmartPriceUpdate{
		SKU: sku,
		Pricing: []walmartPricing{{
			CurrentPriceType: "BASE",
			CurrentPrice: walmartMoney{
				Currency: currency,
				Amount:   price.Amount,
			},
		}},
	}
	_, err := a.doRequest(ctx, session, http.MethodPut, "/v3/price", nil, payload)
	return err
}

// doRequest performs one Walmart API request and returns the raw body.
// Non-2xx responses become *ProviderError.
func (a *WalmartAdapter) doRequest(ctx context.Context, session integration.Session, method, path string, query url.Values, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("walmart: failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("walmart: failed to create request: %w", err)
	}
	req.Header.Set("WM_SEC.ACCESS_TOKEN", session.Token)
	req.Header.Set("WM_QOS.CORRELATION_ID", uuid.NewString())
	req.Header.Set("WM_SVC.NAME", serviceName)
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
		return nil, fmt.Errorf("walmart: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &integration.ProviderError{
			Marketplace: integration.MarketplaceWalmart,
			Status:      resp.StatusCode,
		}
	}
	return body, nil
}

// Ensure WalmartAdapter implements Gateway interface
var _ integration.Gateway = (*WalmartAdapter)(nil)
