package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/dto"
)

func newListingFixture(orgID uuid.UUID, gw *fakeGateway) (*fakeProductRepo, *ListingHandler) {
	repo := newFakeProductRepo()
	resolver := &fakeResolver{creds: testCredentials(orgID, gw.marketplace)}
	tokens := &fakeTokens{token: "test-token"}
	registry := fakeRegistry{gw.marketplace: gw}
	return repo, NewListingHandler(newCatalogService(repo, resolver, tokens, registry))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestListingHandler_UpdateListing(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{marketplace: integration.MarketplaceAmazon}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/amazon/listings/SKU-001",
		`{"title":"New Title","description":"New description"}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, gw.patches, 1)
	assert.Equal(t, "New Title", gw.patches[0].Title)
	assert.Equal(t, "New description", gw.patches[0].Description)
}

func TestListingHandler_UpdateListingUnknownMarketplace(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{marketplace: integration.MarketplaceAmazon}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/shopify/listings/SKU-001",
		`{"title":"New Title"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidMarketplace, resp.Error.Code)
}

func TestListingHandler_GetInventory(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{
		marketplace: integration.MarketplaceWalmart,
		inventory:   &integration.InventorySummary{SKU: "SKU-002", FulfillableAmount: 12, TotalAmount: 15},
	}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, httptest.NewRequest(http.MethodGet, "/api/v1/marketplaces/walmart/listings/SKU-002/inventory", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "SKU-002", data["sku"])
	assert.Equal(t, float64(12), data["fulfillable_amount"])
	assert.Equal(t, float64(15), data["total_amount"])
}

func TestListingHandler_UpdateInventory(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{marketplace: integration.MarketplaceWalmart}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/walmart/listings/SKU-002/inventory",
		`{"quantity":25}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, gw.quantities, 1)
	assert.Equal(t, int64(25), gw.quantities[0])
}

func TestListingHandler_UpdateInventoryRejectsNegative(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{marketplace: integration.MarketplaceWalmart}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/walmart/listings/SKU-002/inventory",
		`{"quantity":-5}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gw.quantities)
}

func TestListingHandler_UpdatePrice(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{marketplace: integration.MarketplaceAmazon}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/amazon/listings/SKU-003/price",
		`{"amount":29.99,"currency":"USD"}`))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, gw.prices, 1)
	assert.Equal(t, "29.99", gw.prices[0].Amount.String())
	assert.Equal(t, "USD", gw.prices[0].Currency)
}

func TestListingHandler_UpdatePriceRejectsZero(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{marketplace: integration.MarketplaceAmazon}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/amazon/listings/SKU-003/price",
		`{"amount":0}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gw.prices)
}

func TestListingHandler_UpstreamFailure(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{
		marketplace: integration.MarketplaceAmazon,
		err:         &integration.ProviderError{Marketplace: integration.MarketplaceAmazon, Status: http.StatusTooManyRequests},
	}
	_, handler := newListingFixture(orgID, gw)
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/amazon/listings/SKU-004/price",
		`{"amount":9.99}`))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUpstream, resp.Error.Code)
}

func TestListingHandler_NotConfigured(t *testing.T) {
	orgID := uuid.New()
	gw := &fakeGateway{marketplace: integration.MarketplaceAmazon}
	repo := newFakeProductRepo()
	resolver := &fakeResolver{err: integration.ErrNotConfigured}
	registry := fakeRegistry{gw.marketplace: gw}
	handler := NewListingHandler(newCatalogService(repo, resolver, &fakeTokens{}, registry))
	engine := newTestRouter(orgID, false, handler)

	rec := perform(engine, jsonRequest(http.MethodPut, "/api/v1/marketplaces/amazon/listings/SKU-001",
		`{"title":"x"}`))

	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotConfigured, resp.Error.Code)
}
