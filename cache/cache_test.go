package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbt "tripsynth/db/db"
	"tripsynth/db/mem"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

type record struct {
	Name string `json:"name"`
}

func TestStore_TTLWindow(t *testing.T) {
	ctx := context.Background()
	written := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		category string
		elapsed  time.Duration
		wantHit  bool
	}{
		{"fresh", dbt.CategoryHotels, time.Minute, true},
		{"just before 24h", dbt.CategoryHotels, 23*time.Hour + 59*time.Minute, true},
		{"just after 24h", dbt.CategoryHotels, 24*time.Hour + time.Minute, false},
		{"exactly 24h", dbt.CategoryHotels, 24 * time.Hour, false},
		{"slow category after 24h", dbt.CategoryDestID, 48 * time.Hour, true},
		{"slow category after 7d", dbt.CategoryDestID, 7*24*time.Hour + time.Minute, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: written}
			s := New(mem.NewInMemoryCacheDBWrapper(), WithClock(clock.now))
			require.NoError(t, s.Put(ctx, "Goa", tt.category, []record{{Name: "A"}}))

			clock.t = written.Add(tt.elapsed)
			var got []record
			hit := s.Get(ctx, "goa", tt.category, &got)
			assert.Equal(t, tt.wantHit, hit)
			if tt.wantHit {
				assert.Equal(t, []record{{Name: "A"}}, got)
			}
		})
	}
}

func TestStore_KeyIsCaseInsensitiveOnSubject(t *testing.T) {
	ctx := context.Background()
	s := New(mem.NewInMemoryCacheDBWrapper())
	require.NoError(t, s.Put(ctx, "  PARIS ", dbt.CategoryMeals, []record{{Name: "Bistro"}}))

	var got []record
	assert.True(t, s.Get(ctx, "paris", dbt.CategoryMeals, &got))
	assert.False(t, s.Get(ctx, "paris", dbt.CategoryHotels, &got))
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := New(mem.NewInMemoryCacheDBWrapper())
	require.NoError(t, s.Put(ctx, "goa", dbt.CategoryHotels, []record{{Name: "A"}, {Name: "B"}}))
	require.NoError(t, s.Put(ctx, "goa", dbt.CategoryHotels, []record{{Name: "C"}}))

	var got []record
	require.True(t, s.Get(ctx, "goa", dbt.CategoryHotels, &got))
	assert.Equal(t, []record{{Name: "C"}}, got)
}

type brokenDB struct{ dbt.CacheDBWrapper }

func (brokenDB) GetEntry(context.Context, dbt.CacheKey) (*dbt.CacheEntry, error) {
	return nil, errors.New("disk on fire")
}

func (brokenDB) PutEntry(context.Context, *dbt.CacheEntry) error {
	return errors.New("disk on fire")
}

func TestStore_BackendErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	s := New(brokenDB{})

	var got []record
	assert.False(t, s.Get(ctx, "goa", dbt.CategoryHotels, &got))
	err := s.Put(ctx, "goa", dbt.CategoryHotels, []record{})
	assert.ErrorContains(t, err, "disk on fire")
}

func TestStore_UndecodablePayloadIsMiss(t *testing.T) {
	ctx := context.Background()
	db := mem.NewInMemoryCacheDBWrapper()
	require.NoError(t, db.PutEntry(ctx, &dbt.CacheEntry{
		Key:         dbt.NewCacheKey("goa", dbt.CategoryHotels),
		Payload:     []byte(`{not json`),
		LastUpdated: time.Now(),
	}))
	s := New(db)

	var got []record
	assert.False(t, s.Get(ctx, "goa", dbt.CategoryHotels, &got))
}

func TestStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	s := New(mem.NewInMemoryCacheDBWrapper(), WithSlowCategories("weather"))
	assert.Equal(t, SlowTTL, s.TTL("weather"))
	require.NoError(t, s.Put(ctx, "goa", "weather", []record{{Name: "sunny"}}))
	require.NoError(t, s.Invalidate(ctx, "goa", "weather"))

	var got []record
	assert.False(t, s.Get(ctx, "goa", "weather", &got))
}
