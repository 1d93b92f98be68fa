package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/models"
)

// ScreeningHandler handles the screening questionnaire and the caller's matches.
type ScreeningHandler struct {
	screening core.ScreeningService
	matches   core.MatchService
	logger    *zap.Logger
}

// NewScreeningHandler creates a new ScreeningHandler.
func NewScreeningHandler(screening core.ScreeningService, matches core.MatchService, logger *zap.Logger) *ScreeningHandler {
	return &ScreeningHandler{screening: screening, matches: matches, logger: logger}
}

// Submit handles POST /screening.
func (h *ScreeningHandler) Submit(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	var answers models.ScreeningAnswers
	if err := c.ShouldBindJSON(&answers); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.screening.Submit(c.Request.Context(), account.ID, answers)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Status handles GET /screening/status.
func (h *ScreeningHandler) Status(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	status, err := h.screening.Status(c.Request.Context(), account.ID)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Matches handles GET /matches.
func (h *ScreeningHandler) Matches(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	list, err := h.matches.GetMatches(c.Request.Context(), account)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
