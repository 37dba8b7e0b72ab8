package handler

import (
	"github.com/gin-gonic/gin"

	syncapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/sync"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/dto"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/middleware"
)

// SyncHandler triggers catalog sync runs
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.Service) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncRunResponse represents a finished sync run
type SyncRunResponse struct {
	Marketplace    string `json:"marketplace"`
	OrganizationID string `json:"organization_id"`
	Status         string `json:"status"`
	ItemsProcessed int    `json:"items_processed"`
	ItemsFailed    int    `json:"items_failed"`
	DurationMillis int64  `json:"duration_ms"`
	StartedAt      string `json:"started_at"`
}

func toSyncRunResponse(result *integration.SyncRunResult) SyncRunResponse {
	return SyncRunResponse{
		Marketplace:    string(result.Marketplace),
		OrganizationID: result.OrganizationID,
		Status:         string(result.Status),
		ItemsProcessed: result.ItemsProcessed,
		ItemsFailed:    result.ItemsFailed,
		DurationMillis: result.Duration.Milliseconds(),
		StartedAt:      result.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// Run executes a full catalog sync for one marketplace and returns the
// run result. Failed runs still report their partial counts.
func (h *SyncHandler) Run(c *gin.Context) {
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

	result, err := h.syncService.RunSync(c.Request.Context(), marketplace, organizationID)
	if err != nil {
		h.syncFailure(c, result, err)
		return
	}

	h.Success(c, toSyncRunResponse(result))
}

// syncFailure reports a failed run with its partial counts attached
func (h *SyncHandler) syncFailure(c *gin.Context, result *integration.SyncRunResult, err error) {
	code := dto.ErrCodeInternal
	message := "Sync run failed"
	if mapped, msg, ok := integrationErrorCode(err); ok {
		code = mapped
		message = msg
	}

	resp := dto.Response{
		Success: false,
		Error: &dto.ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(c),
		},
	}
	if result != nil {
		resp.Data = toSyncRunResponse(result)
	}
	c.JSON(dto.GetHTTPStatus(code), resp)
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/marketplaces/:marketplace/sync", h.Run)
}
