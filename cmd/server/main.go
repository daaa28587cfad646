// Package main is the entry point for the paybatch API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paybatch/internal/app"
	"paybatch/internal/config"
	"paybatch/internal/domain/auth"
	v1 "paybatch/internal/infrastructure/http/v1"
	"paybatch/internal/infrastructure/http/v1/handlers"
	"paybatch/internal/infrastructure/storage/memory"
	"paybatch/internal/infrastructure/storage/postgres"
	"paybatch/pkg/logger"
)

var version = "dev"

// configEnv names the config file when --config is not given.
const configEnv = config.EnvPrefix + "_CONFIG"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "paybatch-server",
		Short:         "Serve the payment batch API",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv(configEnv),
		"path to a YAML config file (env "+configEnv+", default ./config.yaml)")
	return root
}

func serve(parent context.Context, cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("server failed", "error", err)
		return err
	}
	return nil
}

func run(ctx context.Context, cfg *config.Configuration, log *logger.Logger) error {
	log.Infow("starting paybatch server", "version", version, "storage", cfg.Database.Driver)

	var (
		stores app.Stores
		pinger handlers.Pinger
	)
	switch cfg.Database.Driver {
	case app.DriverMemory:
		log.Warn("using in-memory storage; data is lost on exit")
		stores = app.MemoryStores(memory.New())
	default:
		poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
		poolCfg.MaxConns = cfg.Database.MaxConns
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		defer pool.LogStats(context.Background())
		log.Info("database connection established")

		txm := postgres.NewTxManager(pool)
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, txm); err != nil {
				return err
			}
			log.Info("database schema is up to date")
		}
		stores = app.PostgresStores(txm)
		pinger = pool
	}

	svc, err := app.NewServices(stores)
	if err != nil {
		return err
	}
	defer svc.Close()

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.Issuer,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})

	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		DB:           pinger,
		Driver:       cfg.Database.Driver,
		Version:      version,
		Allocator:    svc.Allocator,
		Ledger:       svc.Ledger,
		Batches:      svc.Batches,
		References:   svc.References,
		Contacts:     svc.Contacts,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
