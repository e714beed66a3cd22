package db

import (
	"strings"
	"time"
)

// Slow-changing categories. Provider identifiers for a destination rarely change.
const (
	CategoryDestID     = "dest_id"
	CategoryLocationID = "location_id"
	CategoryRegionID   = "region_id"
)

const (
	CategoryHotels     = "hotels"
	CategoryMeals      = "meals"
	CategoryActivities = "activities"
)

type CacheKey struct {
	Subject  string
	Category string
}

// NewCacheKey lowercases the subject so "Goa" and "goa" share a row.
func NewCacheKey(subject, category string) CacheKey {
	return CacheKey{
		Subject:  strings.ToLower(strings.TrimSpace(subject)),
		Category: strings.TrimSpace(category),
	}
}

func (k CacheKey) String() string {
	return k.Subject + "/" + k.Category
}

type CacheEntry struct {
	Key         CacheKey
	Payload     []byte // JSON encoded list of records
	LastUpdated time.Time
}

// Clone returns a copy that shares no memory with e.
func (e *CacheEntry) Clone() *CacheEntry {
	c := *e
	c.Payload = append([]byte(nil), e.Payload...)
	return &c
}
