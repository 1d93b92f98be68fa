package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/models"
)

const screenshotField = "file"

// TrackingHandler handles grant application tracking endpoints.
type TrackingHandler struct {
	tracking  core.TrackingService
	uploadDir string
	logger    *zap.Logger
	now       func() time.Time
}

// NewTrackingHandler creates a new TrackingHandler. Screenshots are written
// below uploadDir.
func NewTrackingHandler(tracking core.TrackingService, uploadDir string, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{tracking: tracking, uploadDir: uploadDir, logger: logger, now: time.Now}
}

// Create handles POST /tracking.
func (h *TrackingHandler) Create(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	var req models.CreateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.tracking.Create(c.Request.Context(), actor, req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// List handles GET /tracking.
func (h *TrackingHandler) List(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	views, err := h.tracking.List(c.Request.Context(), actor)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListForStartup handles GET /tracking/startups/:startupId.
func (h *TrackingHandler) ListForStartup(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	views, err := h.tracking.ListForStartup(c.Request.Context(), actor, c.Param("startupId"))
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Startups handles GET /tracking/startups.
func (h *TrackingHandler) Startups(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	startups, err := h.tracking.TrackableStartups(c.Request.Context(), actor)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, startups)
}

// Update handles PUT /tracking/:id.
func (h *TrackingHandler) Update(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	var req models.UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.tracking.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Delete handles DELETE /tracking/:id.
func (h *TrackingHandler) Delete(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	if err := h.tracking.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Grant tracking deleted successfully"})
}

// UploadScreenshot handles POST /tracking/:id/screenshot (multipart, field "file").
func (h *TrackingHandler) UploadScreenshot(c *gin.Context) {
	actor, ok := requireAccount(c)
	if !ok {
		return
	}
	id := c.Param("id")

	// Check access before touching the filesystem.
	if _, err := h.tracking.Authorize(c.Request.Context(), actor, id); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}

	file, err := c.FormFile(screenshotField)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Screenshot file is required", Details: err.Error()})
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if ext == "" {
		ext = "png"
	}
	name := fmt.Sprintf("%s_%s.%s", filepath.Base(id), h.now().Format("20060102_150405"), ext)
	dst := filepath.Join(h.uploadDir, name)

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		mapServiceErrorToStatus(c, h.logger, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		mapServiceErrorToStatus(c, h.logger, fmt.Errorf("failed to save screenshot: %w", err))
		return
	}

	entry, err := h.tracking.AttachScreenshot(c.Request.Context(), actor, id, dst)
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil {
			h.logger.Warn("Failed to remove orphaned screenshot", zap.String("path", dst), zap.Error(rmErr))
		}
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Screenshot uploaded successfully", Data: entry})
}
