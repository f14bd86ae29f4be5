package fundamentals

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/marketsift/sift/pkg/logger"
	"github.com/marketsift/sift/pkg/redis"
)

// SnapshotCache keeps fetched snapshots across runs so re-screening
// the same day with a different model does not refetch 500 symbols.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*Snapshot, bool)
	Set(ctx context.Context, key string, snap *Snapshot)
}

// RedisSnapshotCache stores snapshots in Redis, shared between
// processes. Cache failures are logged and treated as misses.
type RedisSnapshotCache struct {
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisCache builds a Redis-backed snapshot cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisSnapshotCache {
	return &RedisSnapshotCache{
		cache:  redis.NewCache(client, "sift"),
		ttl:    ttl,
		logger: log.WithComponent("snapshot-cache"),
	}
}

func (c *RedisSnapshotCache) Get(ctx context.Context, key string) (*Snapshot, bool) {
	var snap Snapshot
	found, err := c.cache.Get(ctx, key, &snap)
	if err != nil {
		c.logger.WithError(err).Warn("Cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &snap, true
}

func (c *RedisSnapshotCache) Set(ctx context.Context, key string, snap *Snapshot) {
	if err := c.cache.Set(ctx, key, snap, c.ttl); err != nil {
		c.logger.WithError(err).Warn("Cache write failed")
	}
}

// MemorySnapshotCache is the in-process fallback when Redis is
// disabled.
type MemorySnapshotCache struct {
	store *gocache.Cache
}

// NewMemoryCache builds an in-process snapshot cache.
func NewMemoryCache(ttl time.Duration) *MemorySnapshotCache {
	return &MemorySnapshotCache{
		store: gocache.New(ttl, 10*time.Minute),
	}
}

func (c *MemorySnapshotCache) Get(_ context.Context, key string) (*Snapshot, bool) {
	v, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	snap, ok := v.(*Snapshot)
	if !ok {
		return nil, false
	}
	return snap, true
}

func (c *MemorySnapshotCache) Set(_ context.Context, key string, snap *Snapshot) {
	c.store.Set(key, snap, gocache.DefaultExpiration)
}

// CachingProvider decorates a Provider with a per-symbol, per-day
// cache. Only successful fetches are cached; errors pass through.
type CachingProvider struct {
	inner  Provider
	cache  SnapshotCache
	logger *logger.Logger
}

// NewCachingProvider wraps inner with cache.
func NewCachingProvider(inner Provider, cache SnapshotCache, log *logger.Logger) *CachingProvider {
	return &CachingProvider{
		inner:  inner,
		cache:  cache,
		logger: log.WithComponent("fundamentals"),
	}
}

func (p *CachingProvider) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	key := redis.SnapshotKey(symbol, time.Now().UTC())

	if snap, ok := p.cache.Get(ctx, key); ok {
		p.logger.WithField("symbol", symbol).Debug("Snapshot cache hit")
		return snap, nil
	}

	snap, err := p.inner.Snapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}

	p.cache.Set(ctx, key, snap)
	return snap, nil
}
