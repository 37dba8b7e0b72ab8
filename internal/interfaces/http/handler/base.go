package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/dto"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getOrganizationID extracts the authenticated organization from JWT claims
func getOrganizationID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetOrganizationID(c); ok {
		return id, nil
	}
	// Header fallback for development setups without an identity provider
	if raw := c.GetHeader("X-Organization-ID"); raw != "" {
		return uuid.Parse(raw)
	}
	return uuid.Nil, errors.New("organization ID not found in context")
}

// getMarketplace parses the marketplace path parameter
func getMarketplace(c *gin.Context) (integration.Marketplace, error) {
	return integration.ParseMarketplace(c.Param("marketplace"))
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithCursor sends a success response with cursor pagination meta
func (h *BaseHandler) SuccessWithCursor(c *gin.Context, data any, count int, nextCursor string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithCursor(data, count, nextCursor))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := middleware.GetRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain and integration errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if code, message, ok := integrationErrorCode(err); ok {
		h.Error(c, dto.GetHTTPStatus(code), code, message)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "Resource not found")
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}

// integrationErrorCode maps marketplace integration errors to API codes
func integrationErrorCode(err error) (code, message string, ok bool) {
	var provider *integration.ProviderError
	if errors.As(err, &provider) {
		return dto.ErrCodeUpstream, provider.Error(), true
	}

	switch {
	case errors.Is(err, integration.ErrNotConfigured):
		return dto.ErrCodeNotConfigured, "Marketplace credentials are not configured", true
	case errors.Is(err, integration.ErrInvalidCredential):
		return dto.ErrCodeInvalidCredential, "Stored marketplace credentials are incomplete", true
	case errors.Is(err, integration.ErrAuthFailed):
		return dto.ErrCodeAuthFailed, "Marketplace rejected the credential exchange", true
	case errors.Is(err, integration.ErrInvalidMarketplace):
		return dto.ErrCodeInvalidMarketplace, "Unknown marketplace", true
	case errors.Is(err, integration.ErrInvalidResponse), errors.Is(err, integration.ErrUnavailable):
		return dto.ErrCodeUpstream, "Marketplace returned an unusable response", true
	}
	return "", "", false
}
