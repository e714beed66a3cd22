package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAPICache, downCreateAPICache)
}

func upCreateAPICache(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS api_cache (
			id BIGSERIAL PRIMARY KEY,
			destination VARCHAR(255) NOT NULL,
			data_type VARCHAR(64) NOT NULL,
			data JSONB NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_api_cache_key ON api_cache (destination, data_type);
	`)
	return err
}

func downCreateAPICache(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS api_cache;`)
	return err
}
