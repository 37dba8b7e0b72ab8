package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	catalogapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/catalog"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
)

// ListingHandler routes listing maintenance writes to the owning marketplace
type ListingHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(catalogService *catalogapp.Service) *ListingHandler {
	return &ListingHandler{catalogService: catalogService}
}

// UpdateListingRequest represents a listing attribute update
type UpdateListingRequest struct {
	Title       string `json:"title" binding:"omitempty,max=500"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateInventoryRequest represents an inventory quantity write
type UpdateInventoryRequest struct {
	Quantity *int64 `json:"quantity" binding:"required"`
}

// UpdatePriceRequest represents a price write
type UpdatePriceRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency" binding:"omitempty,len=3"`
}

// InventoryResponse represents marketplace inventory in API responses
type InventoryResponse struct {
	SKU               string `json:"sku"`
	FulfillableAmount int64  `json:"fulfillable_amount"`
	TotalAmount       int64  `json:"total_amount"`
}

// UpdateListing pushes title and description changes to the marketplace
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}
	marketplace, err := getMarketplace(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	patch := integration.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
	}
	sku := c.Param("sku")
	if err := h.catalogService.UpdateListing(c.Request.Context(), organizationID, marketplace, sku, patch); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetInventory reads live inventory from the marketplace
func (h *ListingHandler) GetInventory(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}
	marketplace, err := getMarketplace(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	sku := c.Param("sku")
	summary, err := h.catalogService.GetInventory(c.Request.Context(), organizationID, marketplace, sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, InventoryResponse{
		SKU:               summary.SKU,
		FulfillableAmount: summary.FulfillableAmount,
		TotalAmount:       summary.TotalAmount,
	})
}

// UpdateInventory pushes an inventory quantity to the marketplace
func (h *ListingHandler) UpdateInventory(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}
	marketplace, err := getMarketplace(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sku := c.Param("sku")
	if err := h.catalogService.UpdateInventory(c.Request.Context(), organizationID, marketplace, sku, *req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UpdatePrice pushes a price to the marketplace
func (h *ListingHandler) UpdatePrice(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}
	marketplace, err := getMarketplace(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	price := integration.PriceUpdate{
		Amount:   decimal.NewFromFloat(req.Amount),
		Currency: req.Currency,
	}
	sku := c.Param("sku")
	if err := h.catalogService.UpdatePrice(c.Request.Context(), organizationID, marketplace, sku, price); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers listing maintenance routes
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/marketplaces/:marketplace/listings")
	{
		listings.PUT("/:sku", h.UpdateListing)
		listings.GET("/:sku/inventory", h.GetInventory)
		listings.PUT("/:sku/inventory", h.UpdateInventory)
		listings.PUT("/:sku/price", h.UpdatePrice)
	}
}
