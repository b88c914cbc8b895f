package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/blazeledger/internal/app"
	"github.com/iho/blazeledger/internal/infrastructure/config"
	"github.com/iho/blazeledger/internal/infrastructure/logger"
	"github.com/iho/blazeledger/internal/infrastructure/postgres"
)

// Commands in this file talk to Postgres, Redis and the broker directly
// using the service configuration from the environment.

func loadLocal() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
	}
	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "blazeledger-cli", Output: os.Stderr})
	return cfg, l, nil
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrator := func() (*postgres.Migrator, error) {
		cfg, l, err := loadLocal()
		if err != nil {
			return nil, err
		}
		return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, l), nil
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				return m.Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := migrator()
				if err != nil {
					return err
				}
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)

	return migrateCmd
}

// withServices connects to the infrastructure, builds the use case graph
// and runs fn.
func withServices(ctx context.Context, fn func(*app.Services) error) error {
	cfg, l, err := loadLocal()
	if err != nil {
		return err
	}

	infra, err := app.Connect(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer infra.Close()

	publisher, err := infra.TaskPublisher(cfg)
	if err != nil {
		return err
	}

	return fn(app.NewServices(cfg, app.Deps{
		Pool:    infra.Pool,
		Redis:   infra.Redis,
		Queue:   publisher,
		Charges: app.NewChargeGateway(cfg, l),
		Logger:  l,
	}))
}

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <transaction-id>",
		Short: "Process a transaction in this process instead of the worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *app.Services) error {
				if err := svc.Processor.Process(cmd.Context(), args[0]); err != nil {
					return err
				}
				txn, err := svc.Transactions.GetTransaction(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", txn.ID, txn.Status)
				return nil
			})
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Re-enqueue one batch of stuck transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *app.Services) error {
				n, err := svc.Sweeper.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "re-enqueued %d transactions\n", n)
				return nil
			})
		},
	}
}
