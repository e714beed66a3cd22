package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	dbt "tripsynth/db/db"
)

const (
	DefaultTTL = 24 * time.Hour
	SlowTTL    = 7 * 24 * time.Hour
)

// Store applies the validity window on top of a CacheDBWrapper. Expiry is
// checked on read; nothing is evicted in the background.
type Store struct {
	db     dbt.CacheDBWrapper
	now    func() time.Time
	logger *slog.Logger
	slow   map[string]bool
}

type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSlowCategories marks extra categories that use SlowTTL.
func WithSlowCategories(categories ...string) Option {
	return func(s *Store) {
		for _, c := range categories {
			s.slow[c] = true
		}
	}
}

func New(db dbt.CacheDBWrapper, opts ...Option) *Store {
	s := &Store{
		db:     db,
		now:    time.Now,
		logger: slog.Default(),
		slow: map[string]bool{
			dbt.CategoryDestID:     true,
			dbt.CategoryLocationID: true,
			dbt.CategoryRegionID:   true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the validity window for category.
func (s *Store) TTL(category string) time.Duration {
	if s.slow[category] {
		return SlowTTL
	}
	return DefaultTTL
}

// Get decodes a fresh entry into out and reports whether it did. Backend and
// decode errors are logged and reported as a miss.
func (s *Store) Get(ctx context.Context, subject, category string, out any) bool {
	key := dbt.NewCacheKey(subject, category)
	entry, err := s.db.GetEntry(ctx, key)
	if err != nil {
		if !errors.Is(err, dbt.ErrCacheMiss) {
			s.logger.Warn("cache read failed, treating as miss", "key", key.String(), "error", err)
		}
		return false
	}

	age := s.now().Sub(entry.LastUpdated)
	if age >= s.TTL(category) {
		s.logger.Debug("cache entry expired", "key", key.String(), "age", age)
		return false
	}

	if err := json.Unmarshal(entry.Payload, out); err != nil {
		s.logger.Warn("cache entry undecodable, treating as miss", "key", key.String(), "error", err)
		return false
	}
	return true
}

// Put overwrites the entry for (subject, category) stamped with the current time.
func (s *Store) Put(ctx context.Context, subject, category string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}
	entry := &dbt.CacheEntry{
		Key:         dbt.NewCacheKey(subject, category),
		Payload:     payload,
		LastUpdated: s.now(),
	}
	if err := s.db.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", entry.Key, err)
	}
	return nil
}

// Invalidate drops the entry for (subject, category).
func (s *Store) Invalidate(ctx context.Context, subject, category string) error {
	return s.db.DeleteEntry(ctx, dbt.NewCacheKey(subject, category))
}

func (s *Store) Close() error {
	return s.db.Close()
}
