package cachedfetch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/transitdb/transitdb/pkg/redis_client"
)

// Client wraps upstream fetches in a Redis-backed response cache with
// per-key request de-duplication: while one caller refreshes a key, every
// other caller for the same key waits for that result instead of hitting the
// upstream again.
type Client struct {
	cache *cache.Cache[string]
	locks *keyMutexTable
}

func NewClient() *Client {
	redisStore := redisstore.NewRedis(redis_client.Client)

	return &Client{
		cache: cache.New[string](redisStore),
		locks: newKeyMutexTable(),
	}
}

// GetString returns the cached value for key, or runs fetch and caches its
// result for ttl. Fetch failures are returned without being cached.
func (c *Client) GetString(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (string, error)) (string, error) {
	if value, err := c.cache.Get(ctx, key); err == nil {
		return value, nil
	}

	unlock := c.locks.Acquire(key)
	defer unlock()

	// Someone may have filled the key while we waited for the lock.
	if value, err := c.cache.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, value, store.WithExpiration(ttl)); err != nil {
		return "", err
	}

	return value, nil
}

// GetJSON is GetString with JSON decoding of the cached payload.
func GetJSON[T any](ctx context.Context, client *Client, key string, ttl time.Duration, fetch func(context.Context) (string, error)) (T, error) {
	var decoded T

	raw, err := client.GetString(ctx, key, ttl, fetch)
	if err != nil {
		return decoded, err
	}

	err = json.Unmarshal([]byte(raw), &decoded)
	return decoded, err
}
