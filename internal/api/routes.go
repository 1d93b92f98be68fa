package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/config"
	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/crypto"
	"grantmatch-backend-go/internal/middleware"
	"grantmatch-backend-go/internal/models"
)

// Services groups the core services the HTTP layer depends on.
type Services struct {
	Accounts      core.AccountService
	Screening     core.ScreeningService
	Catalog       core.CatalogService
	Matches       core.MatchService
	Coupons       core.CouponService
	Startups      core.StartupService
	Tracking      core.TrackingService
	Notifications core.NotificationService
	Stats         core.StatsService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is expected to be applied to the
// router before this is called.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	tokens *crypto.TokenIssuer,
	svc Services,
) {
	authMW := middleware.NewAuthMiddleware(tokens, svc.Accounts, logger)

	authHandler := NewAuthHandler(svc.Accounts, logger)
	userHandler := NewUserHandler(svc.Accounts, logger)
	screeningHandler := NewScreeningHandler(svc.Screening, svc.Matches, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, svc.Coupons, svc.Stats, logger)
	startupHandler := NewStartupHandler(svc.Startups, svc.Tracking, logger)
	trackingHandler := NewTrackingHandler(svc.Tracking, appConfig.UploadDir, logger)
	notificationHandler := NewNotificationHandler(svc.Notifications, logger)

	staff := []models.Tier{models.TierVentureAnalyst, models.TierExpert, models.TierAdmin}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/auth/register", authHandler.Register)
		apiV1.POST("/auth/login", authHandler.Login)
		apiV1.GET("/stats", catalogHandler.PublicStats)

		authed := apiV1.Group("", authMW.VerifyToken(), authMW.LoadAccount())
		{
			authed.GET("/auth/me", authHandler.Me)

			authed.POST("/screening", screeningHandler.Submit)
			authed.GET("/screening/status", screeningHandler.Status)
			authed.GET("/matches", screeningHandler.Matches)

			authed.POST("/coupons/redeem", catalogHandler.RedeemCoupon)
			authed.GET("/grants", catalogHandler.ListGrants)

			admin := authed.Group("/admin")
			{
				admin.POST("/grants", middleware.RequireTiers(models.TierAdmin), catalogHandler.CreateGrant)
				admin.GET("/stats", middleware.RequireTiers(models.TierAdmin, models.TierIncubationAdmin), catalogHandler.AdminStats)
			}

			authed.PUT("/users/:id/tier", middleware.RequireTiers(models.TierAdmin, models.TierVentureAnalyst), userHandler.ChangeTier)

			startups := authed.Group("/startups")
			{
				startups.GET("/my", startupHandler.Mine)
				startups.GET("", middleware.RequireTiers(models.TierExpert, models.TierAdmin), startupHandler.List)
				startups.GET("/:id/tracking",
					middleware.RequireTiers(models.TierFree, models.TierPremium, models.TierExpert, models.TierAdmin),
					startupHandler.Tracking)
			}

			tracking := authed.Group("/tracking", middleware.RequireTiers(staff...))
			{
				tracking.GET("/startups", trackingHandler.Startups)
				tracking.GET("/startups/:startupId", trackingHandler.ListForStartup)
				tracking.GET("", trackingHandler.List)
				tracking.POST("", trackingHandler.Create)
				tracking.PUT("/:id", trackingHandler.Update)
				tracking.DELETE("/:id", trackingHandler.Delete)
				tracking.POST("/:id/screenshot", trackingHandler.UploadScreenshot)
			}

			authed.GET("/notifications/my", notificationHandler.ListMine)
			authed.POST("/notifications/:id/read", notificationHandler.MarkRead)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "UP", Message: "Grantmatch backend is healthy."})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("API routes configured successfully under /api/v1, /health and /metrics.")
}
