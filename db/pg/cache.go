package pg

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbt "tripsynth/db/db"
)

// GORMCacheDBWrapper is a GORM-based PostgreSQL implementation of dbt.CacheDBWrapper.
type GORMCacheDBWrapper struct {
	db *gorm.DB
}

// NewGORMCacheDBWrapper creates and returns a new instance of GORMCacheDBWrapper.
func NewGORMCacheDBWrapper(db *gorm.DB) dbt.CacheDBWrapper {
	return &GORMCacheDBWrapper{
		db: db,
	}
}

func (pgdb *GORMCacheDBWrapper) GetEntry(ctx context.Context, key dbt.CacheKey) (*dbt.CacheEntry, error) {
	var model CacheEntryModel
	result := pgdb.db.WithContext(ctx).
		Where("destination = ? AND data_type = ?", key.Subject, key.Category).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", key, dbt.ErrCacheMiss)
		}
		return nil, fmt.Errorf("failed to get cache entry %s: %w", key, result.Error)
	}
	return &dbt.CacheEntry{
		Key:         dbt.CacheKey{Subject: model.Destination, Category: model.DataType},
		Payload:     []byte(model.Data),
		LastUpdated: model.LastUpdated,
	}, nil
}

// PutEntry upserts on (destination, data_type) so the row is replaced, never merged.
func (pgdb *GORMCacheDBWrapper) PutEntry(ctx context.Context, entry *dbt.CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	model := CacheEntryModel{
		Destination: entry.Key.Subject,
		DataType:    entry.Key.Category,
		Data:        string(entry.Payload),
		LastUpdated: entry.LastUpdated,
	}
	result := pgdb.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "destination"}, {Name: "data_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "last_updated"}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to put cache entry %s: %w", entry.Key, result.Error)
	}
	return nil
}

func (pgdb *GORMCacheDBWrapper) DeleteEntry(ctx context.Context, key dbt.CacheKey) error {
	result := pgdb.db.WithContext(ctx).
		Where("destination = ? AND data_type = ?", key.Subject, key.Category).
		Delete(&CacheEntryModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, result.Error)
	}
	return nil
}

func (pgdb *GORMCacheDBWrapper) Close() error {
	return CloseGORM(pgdb.db)
}
