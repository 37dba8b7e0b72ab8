package marketplace

import (
	"github.com/shopspring/decimal"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
)

// amazonListingsResponse is the Listings Items search response
type amazonListingsResponse struct {
	NumberOfResults int                   `json:"numberOfResults"`
	Pagination      *amazonPagination     `json:"pagination"`
	Items           []amazonListingsItem  `json:"items"`
}

type amazonPagination struct {
	NextToken string `json:"nextToken"`
}

// amazonListingsItem is one SKU entry from the Listings Items API
type amazonListingsItem struct {
	SKU                     string                         `json:"sku"`
	Summaries               []amazonListingSummary         `json:"summaries"`
	Offers                  []amazonListingOffer           `json:"offers"`
	FulfillmentAvailability []amazonFulfillmentAvailability `json:"fulfillmentAvailability"`
}

type amazonListingSummary struct {
	MarketplaceID string           `json:"marketplaceId"`
	ASIN          string           `json:"asin"`
	ProductType   string           `json:"productType"`
	ItemName      string           `json:"itemName"`
	BrandName     string           `json:"brandName"`
	MainImage     *amazonMainImage `json:"mainImage"`
}

type amazonMainImage struct {
	Link string `json:"link"`
}

type amazonListingOffer struct {
	MarketplaceID string      `json:"marketplaceId"`
	OfferType     string      `json:"offerType"`
	Price         amazonMoney `json:"price"`
}

type amazonMoney struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

type amazonFulfillmentAvailability struct {
	FulfillmentChannelCode string `json:"fulfillmentChannelCode"`
	Quantity               int64  `json:"quantity"`
}

// toCatalogItem normalizes one listings entry. The first summary and offer
// win; Amazon returns one per requested marketplace.
func (i *amazonListingsItem) toCatalogItem() integration.CatalogItem {
	item := integration.CatalogItem{
		SKU:      i.SKU,
		Currency: defaultCurrency,
	}
	if len(i.Summaries) > 0 {
		s := i.Summaries[0]
		item.ExternalID = s.ASIN
		item.Title = s.ItemName
		item.Brand = s.BrandName
		item.Category = s.ProductType
		if s.MainImage != nil {
			item.ImageURL = s.MainImage.Link
		}
	}
	if len(i.Offers) > 0 {
		item.Price = i.Offers[0].Price.Amount
		if i.Offers[0].Price.CurrencyCode != "" {
			item.Currency = i.Offers[0].Price.CurrencyCode
		}
	}
	for _, fa := range i.FulfillmentAvailability {
		item.InventoryQuantity += fa.Quantity
	}
	return item
}

// amazonPatchRequest is the Listings Items PATCH body (JSON Patch subset)
type amazonPatchRequest struct {
	ProductType string        `json:"productType"`
	Patches     []amazonPatch `json:"patches"`
}

type amazonPatch struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value []any  `json:"value"`
}

// amazonFBAInventoryResponse is the FBA inventory summaries response
type amazonFBAInventoryResponse struct {
	Payload struct {
		InventorySummaries []amazonInventorySummary `json:"inventorySummaries"`
	} `json:"payload"`
}

type amazonInventorySummary struct {
	SellerSKU        string `json:"sellerSku"`
	TotalQuantity    int64  `json:"totalQuantity"`
	InventoryDetails struct {
		FulfillableQuantity int64 `json:"fulfillableQuantity"`
	} `json:"inventoryDetails"`
}
