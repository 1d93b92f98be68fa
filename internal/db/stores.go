package db

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/config"
)

// Stores holds every repository selected by the configured drivers.
type Stores struct {
	Accounts      AccountRepository
	Startups      StartupRepository
	Tracking      TrackingRepository
	Catalog       Catalog
	Matches       MatchRepository
	Notifications NotificationRepository

	// Redis is set whenever REDIS_ADDR is configured, for the match store
	// or the catalog cache.
	Redis *redis.Client

	closers []func() error
}

// OpenStores connects the drivers named in cfg. The returned Stores must be
// closed by the caller.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	s := &Stores{}
	if err := s.open(ctx, cfg, logger); err != nil {
		if closeErr := s.Close(); closeErr != nil {
			logger.Warn("Failed to release partially opened stores", zap.Error(closeErr))
		}
		return nil, err
	}
	return s, nil
}

func (s *Stores) open(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.StorageDriver {
	case config.DriverFirestore:
		if err := InitFirestore(ctx, cfg, logger); err != nil {
			return err
		}
		s.closers = append(s.closers, CloseFirestore)
		client := GetFirestoreClient()
		s.Accounts = NewFirestoreAccountRepository(client)
		s.Startups = NewFirestoreStartupRepository(client)
		s.Tracking = NewFirestoreTrackingRepository(client)
		s.Notifications = NewFirestoreNotificationRepository(client)
	default:
		s.Accounts = NewMemoryAccountRepository()
		s.Startups = NewMemoryStartupRepository()
		s.Tracking = NewMemoryTrackingRepository()
		s.Notifications = NewMemoryNotificationRepository()
	}
	logger.Info("Profile store ready", zap.String("driver", cfg.StorageDriver))

	switch cfg.CatalogDriver {
	case config.DriverPostgres:
		conn, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, conn.Close)
		catalog := NewPostgresCatalog(conn)
		if err := catalog.Migrate(ctx); err != nil {
			return err
		}
		s.Catalog = catalog
	default:
		s.Catalog = NewMemoryCatalogRepository()
	}
	logger.Info("Grant catalog ready", zap.String("driver", cfg.CatalogDriver))

	if cfg.RedisAddr != "" {
		client, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, client.Close)
		s.Redis = client
	}

	switch cfg.MatchStore {
	case config.DriverFirestore:
		s.Matches = NewFirestoreMatchRepository(GetFirestoreClient())
	case config.DriverRedis:
		s.Matches = NewRedisMatchRepository(s.Redis)
	default:
		s.Matches = NewMemoryMatchRepository()
	}
	logger.Info("Match store ready", zap.String("driver", cfg.MatchStore))
	return nil
}

// Close releases every opened connection, most recent first.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
