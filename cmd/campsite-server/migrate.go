package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"campsite/backend/internal/config"
	"campsite/backend/internal/logging"
	"campsite/backend/internal/store/postgres"
	"campsite/backend/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, serviceName)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
			db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 1})
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() {
				if err := postgres.Close(db); err != nil {
					log.Warn("database close failed", slog.Any("err", err))
				}
			}()

			applied, err := migrations.Up(ctx, db)
			if err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			log.Info("migrations applied", slog.Int("count", len(applied)), slog.Any("versions", applied))
			return nil
		},
	}
}
