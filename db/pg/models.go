package pg

import (
	"time"
)

type CacheEntryModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Destination string    `gorm:"size:255;not null;uniqueIndex:idx_api_cache_key"`
	DataType    string    `gorm:"size:64;not null;uniqueIndex:idx_api_cache_key"`
	Data        string    `gorm:"type:jsonb;not null"`
	LastUpdated time.Time `gorm:"not null"`
}

// TableName returns the table name for CacheEntryModel.
func (CacheEntryModel) TableName() string {
	return "api_cache"
}
