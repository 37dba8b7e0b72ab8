package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	catalogapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/catalog"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/catalog"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/dto"
)

// ProductHandler exposes the synced product store
type ProductHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService *catalogapp.Service) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                string          `json:"id"`
	Marketplace       string          `json:"marketplace"`
	SKU               string          `json:"sku"`
	ExternalID        string          `json:"external_id,omitempty"`
	Title             string          `json:"title"`
	Brand             string          `json:"brand,omitempty"`
	Category          string          `json:"category,omitempty"`
	ImageURL          string          `json:"image_url,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	InventoryQuantity int64           `json:"inventory_quantity"`
	Status            string          `json:"status"`
	SyncedAt          time.Time       `json:"synced_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID.String(),
		Marketplace:       p.Marketplace,
		SKU:               p.SKU,
		ExternalID:        p.ExternalID,
		Title:             p.Title,
		Brand:             p.Brand,
		Category:          p.Category,
		ImageURL:          p.ImageURL,
		Price:             p.Price,
		Currency:          p.Currency,
		InventoryQuantity: p.InventoryQuantity,
		Status:            string(p.Status),
		SyncedAt:          p.SyncedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// List returns a cursor-paginated page of the organization's products
func (h *ProductHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	query := catalog.ListQuery{
		Marketplace: req.Marketplace,
		ListOptions: shared.ListOptions{
			Limit:  req.Limit,
			Cursor: req.Cursor,
		},
	}

	page, err := h.catalogService.ListProducts(c.Request.Context(), organizationID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toProductResponse(&page.Items[i]))
	}
	h.SuccessWithCursor(c, items, len(items), page.NextCursor)
}

// Get returns a single product by SKU
func (h *ProductHandler) Get(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}

	sku := c.Param("sku")
	product, err := h.catalogService.GetProduct(c.Request.Context(), organizationID, sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(product))
}

// Delete deactivates a product record
func (h *ProductHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}

	sku := c.Param("sku")
	if err := h.catalogService.DeleteProduct(c.Request.Context(), organizationID, sku); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:sku", h.Get)
		products.DELETE("/:sku", h.Delete)
	}
}
