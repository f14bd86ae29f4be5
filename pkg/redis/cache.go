package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values under a namespaced key. Lookups on a
// disabled client miss without touching the network.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a cache helper writing under prefix.
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + ":cache:" + k
}

// Get unmarshals the cached value into dest. The second return is false
// on a miss; errors mean the key existed but could not be read.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// SnapshotKey builds the cache key for a fundamentals snapshot.
// Keyed per trading day so stale figures roll over naturally.
func SnapshotKey(symbol string, day time.Time) string {
	return fmt.Sprintf("snapshot:%s:%s", symbol, day.Format("2006-01-02"))
}
