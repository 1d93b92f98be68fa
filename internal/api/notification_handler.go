package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
)

// NotificationHandler handles the caller's notifications.
type NotificationHandler struct {
	notifications core.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications core.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// ListMine handles GET /notifications/my.
func (h *NotificationHandler) ListMine(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	list, err := h.notifications.ListForAccount(c.Request.Context(), account.ID)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), account.ID, c.Param("id")); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Notification marked as read"})
}
