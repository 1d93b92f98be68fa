package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/models"
)

// CatalogHandler handles grants, coupons and platform statistics.
type CatalogHandler struct {
	catalog core.CatalogService
	coupons core.CouponService
	stats   core.StatsService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog core.CatalogService, coupons core.CouponService, stats core.StatsService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, coupons: coupons, stats: stats, logger: logger}
}

// ListGrants handles GET /grants.
func (h *CatalogHandler) ListGrants(c *gin.Context) {
	grants, err := h.catalog.ListGrants(c.Request.Context())
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

// CreateGrant handles POST /admin/grants.
func (h *CatalogHandler) CreateGrant(c *gin.Context) {
	var req models.CreateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	grant, err := h.catalog.CreateGrant(c.Request.Context(), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, grant)
}

// RedeemCoupon handles POST /coupons/redeem.
func (h *CatalogHandler) RedeemCoupon(c *gin.Context) {
	account, ok := requireAccount(c)
	if !ok {
		return
	}
	var req models.RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.coupons.Redeem(c.Request.Context(), account.ID, req.Code)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PublicStats handles GET /stats.
func (h *CatalogHandler) PublicStats(c *gin.Context) {
	stats, err := h.stats.Public(c.Request.Context())
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminStats handles GET /admin/stats.
func (h *CatalogHandler) AdminStats(c *gin.Context) {
	stats, err := h.stats.Admin(c.Request.Context())
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
