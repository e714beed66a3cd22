package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	dbt "tripsynth/db/db"
)

// SQLiteCacheDBWrapper stores cache rows in an embedded SQLite file.
type SQLiteCacheDBWrapper struct {
	db *sql.DB
}

// NewSQLiteCacheDBWrapper opens or creates the database at dbPath and ensures the
// api_cache table exists.
func NewSQLiteCacheDBWrapper(dbPath string) (*SQLiteCacheDBWrapper, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteCacheDBWrapper{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteCacheDBWrapper) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS api_cache (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		destination  TEXT NOT NULL,
		data_type    TEXT NOT NULL,
		data         TEXT NOT NULL,
		last_updated TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_api_cache_key ON api_cache(destination, data_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteCacheDBWrapper) GetEntry(ctx context.Context, key dbt.CacheKey) (*dbt.CacheEntry, error) {
	var data, lastUpdated string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, last_updated FROM api_cache WHERE destination = ? AND data_type = ?`,
		key.Subject, key.Category,
	).Scan(&data, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, dbt.ErrCacheMiss)
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry %s: %w", key, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("parse last_updated %q for %s: %w", lastUpdated, key, err)
	}
	return &dbt.CacheEntry{Key: key, Payload: []byte(data), LastUpdated: ts}, nil
}

func (s *SQLiteCacheDBWrapper) PutEntry(ctx context.Context, entry *dbt.CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_cache (destination, data_type, data, last_updated) VALUES (?, ?, ?, ?)
		ON CONFLICT(destination, data_type) DO UPDATE SET data = excluded.data, last_updated = excluded.last_updated`,
		entry.Key.Subject, entry.Key.Category, string(entry.Payload), entry.LastUpdated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put cache entry %s: %w", entry.Key, err)
	}
	return nil
}

func (s *SQLiteCacheDBWrapper) DeleteEntry(ctx context.Context, key dbt.CacheKey) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_cache WHERE destination = ? AND data_type = ?`, key.Subject, key.Category)
	if err != nil {
		return fmt.Errorf("delete cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteCacheDBWrapper) Close() error {
	return s.db.Close()
}
