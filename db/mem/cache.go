package mem

import (
	"context"
	"fmt"
	"sync"

	dbt "tripsynth/db/db"
)

// inMemoryCacheDBWrapper is an in-memory implementation of dbt.CacheDBWrapper.
type inMemoryCacheDBWrapper struct {
	entries map[dbt.CacheKey]*dbt.CacheEntry

	mu sync.RWMutex
}

// NewInMemoryCacheDBWrapper creates and returns a new instance of inMemoryCacheDBWrapper.
func NewInMemoryCacheDBWrapper() dbt.CacheDBWrapper {
	return &inMemoryCacheDBWrapper{
		entries: make(map[dbt.CacheKey]*dbt.CacheEntry),
	}
}

// GetEntry returns a copy of the stored row.
func (db *inMemoryCacheDBWrapper) GetEntry(_ context.Context, key dbt.CacheKey) (*dbt.CacheEntry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	entry, exists := db.entries[key]
	if !exists {
		return nil, fmt.Errorf("%s: %w", key, dbt.ErrCacheMiss)
	}
	return entry.Clone(), nil
}

// PutEntry stores a copy of entry, replacing any previous row for the key.
func (db *inMemoryCacheDBWrapper) PutEntry(_ context.Context, entry *dbt.CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	db.entries[entry.Key] = entry.Clone()
	return nil
}

// DeleteEntry removes the row for key. Deleting a missing row is not an error.
func (db *inMemoryCacheDBWrapper) DeleteEntry(_ context.Context, key dbt.CacheKey) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.entries, key)
	return nil
}

func (db *inMemoryCacheDBWrapper) Close() error {
	return nil
}
