package handler

import (
	"github.com/gin-gonic/gin"

	credentialapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/credential"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/middleware"
)

// CredentialHandler manages per-organization marketplace credentials.
// Reads return masked fields only; secrets never leave the server.
type CredentialHandler struct {
	BaseHandler
	credentialService *credentialapp.Service
}

// NewCredentialHandler creates a new CredentialHandler
func NewCredentialHandler(credentialService *credentialapp.Service) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

// SaveCredentialRequest represents a credential set write
type SaveCredentialRequest struct {
	ClientID      string `json:"client_id" binding:"required"`
	ClientSecret  string `json:"client_secret" binding:"required"`
	RefreshToken  string `json:"refresh_token"`
	SellerID      string `json:"seller_id"`
	MarketplaceID string `json:"marketplace_id"`
}

// List returns the organization's credential sets with secrets masked
func (h *CredentialHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not identified")
		return
	}

	masked, err := h.credentialService.List(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, masked)
}

// Save stores a credential set for one marketplace
func (h *CredentialHandler) Save(c *gin.Context) {
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

	var req SaveCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fields := integration.CredentialFields{
		ClientID:      req.ClientID,
		ClientSecret:  req.ClientSecret,
		RefreshToken:  req.RefreshToken,
		SellerID:      req.SellerID,
		MarketplaceID: req.MarketplaceID,
	}
	if err := h.credentialService.Save(c.Request.Context(), organizationID, marketplace, fields); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete removes the credential set for one marketplace
func (h *CredentialHandler) Delete(c *gin.Context) {
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

	if err := h.credentialService.Delete(c.Request.Context(), organizationID, marketplace); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers credential routes. Writes require the admin role.
func (h *CredentialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credentials := rg.Group("/credentials")
	{
		credentials.GET("", h.List)
		credentials.PUT("/:marketplace", middleware.RequireAdmin(), h.Save)
		credentials.DELETE("/:marketplace", middleware.RequireAdmin(), h.Delete)
	}
}
