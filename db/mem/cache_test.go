package mem_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbt "tripsynth/db/db"
	"tripsynth/db/mem"
)

// setupTest creates a new inMemoryCacheDBWrapper instance for each test.
func setupTest() dbt.CacheDBWrapper {
	return mem.NewInMemoryCacheDBWrapper()
}

func TestPutAndGetEntry(t *testing.T) {
	db := setupTest()
	ctx := context.Background()

	key := dbt.NewCacheKey("Goa", dbt.CategoryHotels)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	err := db.PutEntry(ctx, &dbt.CacheEntry{Key: key, Payload: []byte(`[{"name":"A"}]`), LastUpdated: now})
	require.NoError(t, err)

	got, err := db.GetEntry(ctx, dbt.NewCacheKey("goa", dbt.CategoryHotels))
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"A"}]`, string(got.Payload))
	assert.True(t, now.Equal(got.LastUpdated))

	// Returned rows are copies
	got.Payload[0] = 'x'
	again, err := db.GetEntry(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, byte('['), again.Payload[0])
}

func TestPutEntry_Overwrites(t *testing.T) {
	db := setupTest()
	ctx := context.Background()
	key := dbt.NewCacheKey("goa", dbt.CategoryMeals)

	require.NoError(t, db.PutEntry(ctx, &dbt.CacheEntry{Key: key, Payload: []byte(`[1]`)}))
	require.NoError(t, db.PutEntry(ctx, &dbt.CacheEntry{Key: key, Payload: []byte(`[2]`)}))

	got, err := db.GetEntry(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got.Payload))

	assert.Error(t, db.PutEntry(ctx, nil))
}

func TestGetEntry_Miss(t *testing.T) {
	db := setupTest()
	got, err := db.GetEntry(context.Background(), dbt.NewCacheKey("nowhere", dbt.CategoryHotels))
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, dbt.ErrCacheMiss))
}

func TestDeleteEntry(t *testing.T) {
	db := setupTest()
	ctx := context.Background()
	key := dbt.NewCacheKey("goa", dbt.CategoryActivities)
	require.NoError(t, db.PutEntry(ctx, &dbt.CacheEntry{Key: key, Payload: []byte(`[]`)}))

	require.NoError(t, db.DeleteEntry(ctx, key))
	_, err := db.GetEntry(ctx, key)
	assert.ErrorIs(t, err, dbt.ErrCacheMiss)

	// deleting twice is fine
	assert.NoError(t, db.DeleteEntry(ctx, key))
}

func TestConcurrentAccess(t *testing.T) {
	db := setupTest()
	ctx := context.Background()
	key := dbt.NewCacheKey("goa", dbt.CategoryHotels)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = db.PutEntry(ctx, &dbt.CacheEntry{Key: key, Payload: []byte(`[]`)})
		}()
		go func() {
			defer wg.Done()
			_, _ = db.GetEntry(ctx, key)
		}()
	}
	wg.Wait()

	_, err := db.GetEntry(ctx, key)
	assert.NoError(t, err)
}
