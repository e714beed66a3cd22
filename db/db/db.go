package db

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by GetEntry when no row exists for the key.
var ErrCacheMiss = errors.New("cache entry not found")

// CacheDBWrapper persists cache rows. Expiry is not its concern: rows are
// returned as stored and the cache package decides whether they are fresh.
type CacheDBWrapper interface {
	// Read
	GetEntry(ctx context.Context, key CacheKey) (*CacheEntry, error)
	// Create or overwrite
	PutEntry(ctx context.Context, entry *CacheEntry) error
	// Delete
	DeleteEntry(ctx context.Context, key CacheKey) error

	Close() error
}
