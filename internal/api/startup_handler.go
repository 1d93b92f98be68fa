package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
)

// StartupHandler handles startup profile endpoints.
type StartupHandler struct {
	startups core.StartupService
	tracking core.TrackingService
	logger   *zap.Logger
}

// NewStartupHandler creates a new StartupHandler.
func NewStartupHandler(startups core.StartupService, tracking core.TrackingService, logger *zap.Logger) *StartupHandler {
	return &StartupHandler{startups: startups, tracking: tracking, logger: logger}
}

// Mine handles GET /startups/my. Answers null when no profile exists yet.
func (h *StartupHandler) Mine(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	startup, err := h.startups.Mine(c.Request.Context(), account)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, startup)
}

// List handles GET /startups.
func (h *StartupHandler) List(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	startups, err := h.startups.List(c.Request.Context(), account)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, startups)
}

// Tracking handles GET /startups/:id/tracking.
func (h *StartupHandler) Tracking(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	views, err := h.tracking.ListForOwner(c.Request.Context(), account, c.Param("id"))
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
