// Command grantctl runs operator tasks against the configured stores.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/config"
	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "grantctl",
	Short: "Operate the grant matching backend",
	Long: `grantctl seeds the catalog, bootstraps administrators, reconciles
account and startup tiers, and runs the notification mail worker.

Configuration is read from the environment (and .env) exactly like the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(seedCmd, createAdminCmd, syncTiersCmd, notifyWorkerCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	stores *db.Stores
}

func bootstrap(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	stores, err := db.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: log, stores: stores}, nil
}

func (e *env) Close() {
	if err := e.stores.Close(); err != nil {
		e.logger.Warn("Failed to close stores", zap.Error(err))
	}
	_ = e.logger.Sync()
}
