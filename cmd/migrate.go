package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"tripsynth/config"
	"tripsynth/db/pg"
	_ "tripsynth/migration"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the postgres cache schema",
		Long: `This command applies the goose migrations for the postgres cache backend.
The sqlite backend creates its table on open and needs no migration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			up, _ := cmd.Flags().GetBool("up")
			down, _ := cmd.Flags().GetBool("down")
			if down {
				up = false
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), pg.CreateDSN(cfg.DatabaseURL), up, down, slog.Default())
		},
	}

	cmd.Flags().BoolP("up", "u", true, "Apply all pending migrations")
	cmd.Flags().BoolP("down", "d", false, "Roll back the last migration")
	return cmd
}

func migrate(ctx context.Context, dsn string, up, down bool, logger *slog.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// the default DSN selects the app schema, which may not exist yet
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", config.AppName)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	const migrationsDir = "migration"
	switch {
	case up:
		logger.Info("running up migrations")
		if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose up failed: %w", err)
		}
	case down:
		logger.Info("rolling back the last migration")
		if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("goose down failed: %w", err)
		}
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}
