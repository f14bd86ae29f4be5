package fundamentals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/logger"
)

// countingProvider records how often the upstream is hit.
type countingProvider struct {
	calls int
	snap  *Snapshot
	err   error
}

func (p *countingProvider) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.snap, nil
}

func TestMemorySnapshotCache(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	ctx := context.Background()

	if _, found := cache.Get(ctx, "snapshot:AAPL:2026-08-21"); found {
		t.Fatal("Expected miss on empty cache")
	}

	snap := &Snapshot{Symbol: "AAPL", PERatio: Float(34.7)}
	cache.Set(ctx, "snapshot:AAPL:2026-08-21", snap)

	got, found := cache.Get(ctx, "snapshot:AAPL:2026-08-21")
	require.True(t, found)
	assert.Equal(t, "AAPL", got.Symbol)
	require.NotNil(t, got.PERatio)
	assert.InDelta(t, 34.7, *got.PERatio, 1e-9)
}

func TestCachingProvider_HitSkipsUpstream(t *testing.T) {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error"})
	upstream := &countingProvider{snap: &Snapshot{Symbol: "MSFT", MarketCap: Float(3.2e12)}}

	provider := NewCachingProvider(upstream, NewMemoryCache(time.Minute), log)
	ctx := context.Background()

	first, err := provider.Snapshot(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls)

	second, err := provider.Snapshot(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls, "second fetch must come from cache")
	assert.Equal(t, first.Symbol, second.Symbol)
}

func TestCachingProvider_ErrorNotCached(t *testing.T) {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error"})
	upstream := &countingProvider{err: errors.New("status 502")}

	provider := NewCachingProvider(upstream, NewMemoryCache(time.Minute), log)
	ctx := context.Background()

	_, err := provider.Snapshot(ctx, "WBD")
	require.Error(t, err)

	_, err = provider.Snapshot(ctx, "WBD")
	require.Error(t, err)

	assert.Equal(t, 2, upstream.calls, "failures must not populate the cache")
}
