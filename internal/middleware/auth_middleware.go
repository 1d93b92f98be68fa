package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/crypto"
	"grantmatch-backend-go/internal/models"
)

// Context keys set by the auth middleware.
const (
	ContextUserID  = "userID"
	ContextEmail   = "userEmail"
	ContextAccount = "account"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AccountLookup resolves the account behind a verified token.
type AccountLookup interface {
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
}

// AuthMiddleware provides Gin middleware for bearer token authentication.
type AuthMiddleware struct {
	tokens   *crypto.TokenIssuer
	accounts AccountLookup
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
// It panics if the token issuer is nil, as this is a critical setup dependency.
func NewAuthMiddleware(tokens *crypto.TokenIssuer, accounts AccountLookup, logger *zap.Logger) *AuthMiddleware {
	if tokens == nil {
		panic("token issuer is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{tokens: tokens, accounts: accounts, logger: logger}
}

// VerifyToken verifies the bearer token from the Authorization header and
// sets the user ID and email in the Gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			m.logger.Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// LoadAccount fetches the account for the verified user. Must run after
// VerifyToken.
func (m *AuthMiddleware) LoadAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
			return
		}

		account, err := m.accounts.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "User not found"})
				return
			}
			m.logger.Error("Failed to load account for request", zap.String("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load account"})
			return
		}

		c.Set(ContextAccount, account)
		c.Next()
	}
}

// RequireTiers aborts with 403 unless the loaded account has one of tiers.
func RequireTiers(tiers ...models.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
			return
		}
		if !account.Tier.In(tiers...) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Access denied", Details: "insufficient tier"})
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the account set by LoadAccount.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(ContextAccount)
	if !ok {
		return nil, false
	}
	account, ok := v.(*models.Account)
	return account, ok && account != nil
}
