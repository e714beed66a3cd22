package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	dbt "tripsynth/db/db"
)

const keyPrefix = "tripsynth:cache:"

// retention bounds how long Redis keeps a row. Freshness is still decided by the
// cache package from LastUpdated; this only stops stale rows piling up.
const retention = 8 * 24 * time.Hour

type row struct {
	Data        json.RawMessage `json:"data"`
	LastUpdated time.Time       `json:"last_updated"`
}

// RedisCacheDBWrapper stores each cache row as a JSON string value.
type RedisCacheDBWrapper struct {
	client *goredis.Client
}

func NewRedisCacheDBWrapper(client *goredis.Client) *RedisCacheDBWrapper {
	return &RedisCacheDBWrapper{client: client}
}

// Dial connects to addr and pings it.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func redisKey(key dbt.CacheKey) string {
	return keyPrefix + key.Subject + ":" + key.Category
}

func (r *RedisCacheDBWrapper) GetEntry(ctx context.Context, key dbt.CacheKey) (*dbt.CacheEntry, error) {
	raw, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%s: %w", key, dbt.ErrCacheMiss)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}

	var stored row
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return &dbt.CacheEntry{Key: key, Payload: []byte(stored.Data), LastUpdated: stored.LastUpdated}, nil
}

func (r *RedisCacheDBWrapper) PutEntry(ctx context.Context, entry *dbt.CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	payload := entry.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}
	body, err := json.Marshal(row{Data: payload, LastUpdated: entry.LastUpdated})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", entry.Key, err)
	}
	if err := r.client.Set(ctx, redisKey(entry.Key), body, retention).Err(); err != nil {
		return fmt.Errorf("failed to put cache entry %s: %w", entry.Key, err)
	}
	return nil
}

func (r *RedisCacheDBWrapper) DeleteEntry(ctx context.Context, key dbt.CacheKey) error {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

func (r *RedisCacheDBWrapper) Close() error {
	return r.client.Close()
}
