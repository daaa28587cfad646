// Package main provides the checkctl operator CLI.
//
// Usage:
//
//	checkctl migrate
//	checkctl seed
//	checkctl range create --category common --priority 2 --start 91181444 --end 91181643
//	checkctl range list [--category deferred] [--all]
//	checkctl check set-state <check-id> confirmed_issue
//	checkctl reference next LABSE
//	checkctl token --id ops-1 --name "Back office" --role operator
//	checkctl validate tax-id 20-12345678-6
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"paybatch/internal/app"
	"paybatch/internal/config"
	"paybatch/internal/infrastructure/storage/memory"
	"paybatch/internal/infrastructure/storage/postgres"
	"paybatch/pkg/logger"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "checkctl",
		Short:         "Administer check ranges, references and operator tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (default ./config.yaml)")

	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newRangeCmd(),
		newCheckCmd(),
		newReferenceCmd(),
		newTokenCmd(),
		newValidateCmd(),
	)
	return root
}

// session is an open connection to the configured storage.
type session struct {
	cfg   *config.Configuration
	svc   *app.Services
	txm   *postgres.TxManager
	close func()
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: true})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger.SetDefault(log)

	s := &session{cfg: cfg, close: func() {}}
	var stores app.Stores
	if cfg.Database.Driver == app.DriverMemory {
		stores = app.MemoryStores(memory.New())
	} else {
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s.txm = postgres.NewTxManager(pool)
		s.close = pool.Close
		stores = app.PostgresStores(s.txm)
	}

	svc, err := app.NewServices(stores)
	if err != nil {
		s.close()
		return nil, err
	}
	s.svc = svc
	closeStore := s.close
	s.close = func() {
		svc.Close()
		closeStore()
	}
	return s, nil
}

// withSession opens storage for the duration of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if s.txm == nil {
					return fmt.Errorf("migrate requires the postgres driver")
				}
				if err := postgres.Migrate(ctx, s.txm); err != nil {
					return err
				}
				cmd.Println("schema is up to date")
				return nil
			})
		},
	}
}
