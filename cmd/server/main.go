package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grantmatch-backend-go/internal/api"
	"grantmatch-backend-go/internal/config"
	"grantmatch-backend-go/internal/core"
	"grantmatch-backend-go/internal/crypto"
	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/logger"
	"grantmatch-backend-go/internal/middleware"
	"grantmatch-backend-go/internal/oracle"
	"grantmatch-backend-go/internal/seed"
	"grantmatch-backend-go/pkg/cache"
	"grantmatch-backend-go/pkg/mailer"
	"grantmatch-backend-go/pkg/messagequeue"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	zapLogger, err := logger.New(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(appConfig, zapLogger); err != nil {
		zapLogger.Fatal("Server exited with error", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}

func run(appConfig *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- 3. Open Stores ---
	initCtx, cancelInit := context.WithTimeout(ctx, 15*time.Second)
	defer cancelInit()
	stores, err := db.OpenStores(initCtx, appConfig, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			zapLogger.Warn("Failed to close stores", zap.Error(err))
		}
	}()

	if appConfig.SeedFile != "" {
		file, err := seed.Load(appConfig.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(initCtx, file, stores.Catalog, stores.Accounts, zapLogger); err != nil {
			return fmt.Errorf("failed to apply seed: %w", err)
		}
	}

	// --- 4. Optional Collaborators ---
	var catalogCache cache.Cache
	if stores.Redis != nil {
		catalogCache = cache.NewRedisCache(stores.Redis, "grantmatch:", zapLogger)
		zapLogger.Info("Catalog cache enabled", zap.Duration("ttl", appConfig.CatalogCacheTTL))
	}

	delivery := core.NotificationDelivery{QueueName: appConfig.NotifyQueue}
	if appConfig.RabbitMQURL != "" {
		queue, err := messagequeue.NewRabbitMQService(appConfig.RabbitMQURL, zapLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		defer queue.Close()
		delivery.Queue = queue
	}
	if appConfig.SMTPHost != "" {
		m, err := mailer.NewSMTPMailer(mailer.Config{
			Host: appConfig.SMTPHost, Port: appConfig.SMTPPort,
			User: appConfig.SMTPUser, Pass: appConfig.SMTPPass, From: appConfig.MailFrom,
		})
		if err != nil {
			return fmt.Errorf("failed to configure mailer: %w", err)
		}
		delivery.Mailer = m
	}

	rankingOracle, err := oracle.New(initCtx, oracle.Settings{
		Provider: appConfig.OracleProvider,
		APIKey:   appConfig.OracleAPIKey,
		Model:    appConfig.OracleModel,
		BaseURL:  appConfig.OracleBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to configure ranking oracle: %w", err)
	}
	if rankingOracle == nil {
		zapLogger.Warn("ORACLE_API_KEY not set; matches use the deterministic fallback ranking")
	} else {
		zapLogger.Info("Ranking oracle configured", zap.String("provider", rankingOracle.Provider()))
	}

	tokens, err := crypto.NewTokenIssuer(appConfig.JWTSecret, appConfig.JWTTTL)
	if err != nil {
		return err
	}

	// --- 5. Initialize Services ---
	catalog := core.NewCatalogService(stores.Catalog, catalogCache, appConfig.CatalogCacheTTL, zapLogger)
	syncer := core.NewTierSynchronizer(stores.Accounts, stores.Startups, zapLogger)
	notifications := core.NewNotificationService(stores.Notifications, delivery, zapLogger)
	ranker := core.NewRanker(rankingOracle, appConfig.OracleTimeout, appConfig.OracleMaxCandidates, zapLogger)

	services := api.Services{
		Accounts:      core.NewAccountService(stores.Accounts, tokens, syncer, notifications, zapLogger),
		Screening:     core.NewScreeningService(stores.Accounts, stores.Startups, stores.Matches, catalog, ranker, syncer, zapLogger),
		Catalog:       catalog,
		Matches:       core.NewMatchService(stores.Matches, catalog),
		Coupons:       core.NewCouponService(stores.Catalog, stores.Accounts, syncer, notifications, zapLogger),
		Startups:      core.NewStartupService(stores.Startups),
		Tracking:      core.NewTrackingService(stores.Tracking, stores.Startups, stores.Accounts, catalog, notifications, appConfig.TrackingStrictTransitions, zapLogger),
		Notifications: notifications,
		Stats:         core.NewStatsService(stores.Accounts, stores.Startups, stores.Tracking, stores.Matches, catalog),
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))
	if appConfig.ClientURL == "" {
		zapLogger.Warn("CLIENT_URL is not configured; CORS allows every origin without credentials.")
	}

	api.SetupRoutes(router, appConfig, zapLogger, tokens, services)

	// --- 7. Serve until a shutdown signal ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("Attempting graceful shutdown of HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
