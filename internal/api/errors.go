package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/middleware"
	"grantmatch-backend-go/internal/models"
)

// mapServiceErrorToStatus maps errors from the core services to HTTP status
// codes and an ErrorResponse.
func mapServiceErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrValidation):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Details: err.Error()}
	case errors.Is(err, core.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: "Invalid email or password"}
	case errors.Is(err, core.ErrAccessDenied):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: "Access denied", Details: err.Error()}
	case errors.Is(err, core.ErrNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Not found", Details: err.Error()}
	case errors.Is(err, core.ErrEmailTaken):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Email already registered"}
	case errors.Is(err, core.ErrDuplicate):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Already exists", Details: err.Error()}
	default:
		logger.Error("Internal Server Error", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// requireAccount returns the account loaded by the auth middleware, answering
// 401 when it is missing.
func requireAccount(c *gin.Context) (*models.Account, bool) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: account not found in context"})
		return nil, false
	}
	return account, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
}
