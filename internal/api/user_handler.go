package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/models"
)

// UserHandler handles staff operations on other accounts.
type UserHandler struct {
	accounts core.AccountService
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts core.AccountService, logger *zap.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

// ChangeTier handles PUT /users/:id/tier.
func (h *UserHandler) ChangeTier(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	var req models.ChangeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	change, err := h.accounts.ChangeTier(c.Request.Context(), actor, c.Param("id"), req.Tier)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, change)
}
