package marketplace

import (
	"github.com/shopspring/decimal"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
)

// walmartItemsResponse is the GET /v3/items response envelope
type walmartItemsResponse struct {
	ItemResponse []walmartItem `json:"ItemResponse"`
	TotalItems   int           `json:"totalItems"`
}

// walmartItem is one item record from the Walmart item API
type walmartItem struct {
	SKU             string       `json:"sku"`
	WPID            string       `json:"wpid"`
	ProductName     string       `json:"productName"`
	Brand           string       `json:"brand"`
	ProductType     string       `json:"productType"`
	Price           walmartMoney `json:"price"`
	PublishedStatus string       `json:"publishedStatus"`
}

type walmartMoney struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// toCatalogItem normalizes one Walmart item record
func (i *walmartItem) toCatalogItem() integration.CatalogItem {
	currency := i.Price.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return integration.CatalogItem{
		SKU:        i.SKU,
		ExternalID: i.WPID,
		Title:      i.ProductName,
		Brand:      i.Brand,
		Category:   i.ProductType,
		Price:      i.Price.Amount,
		Currency:   currency,
	}
}

// walmartInventory is the GET/PUT /v3/inventory payload
type walmartInventory struct {
	SKU      string           `json:"sku"`
	Quantity walmartQuantity  `json:"quantity"`
}

type walmartQuantity struct {
	Unit   string `json:"unit"`
	Amount int64  `json:"amount"`
}

// walmartPriceUpdate is the PUT /v3/price payload
type walmartPriceUpdate struct {
	SKU     string            `json:"sku"`
	Pricing []walmartPricing  `json:"pricing"`
}

type walmartPricing struct {
	CurrentPriceType string       `json:"currentPriceType"`
	CurrentPrice     walmartMoney `json:"currentPrice"`
}

// walmartItemUpdate is the PUT /v3/items/{sku} payload for attribute edits
type walmartItemUpdate struct {
	SKU              string `json:"sku"`
	ProductName      string `json:"productName,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
}
