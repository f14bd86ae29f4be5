package redis

import (
	"context"
	"testing"
	"time"

	"github.com/marketsift/sift/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client := New(config.RedisConfig{Enabled: false})

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}

	// Disabled clients never dial, so Ping reports healthy.
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	client := New(config.RedisConfig{Enabled: false})
	cache := NewCache(client, "sift")

	// When Redis is disabled, cache operations are no-ops
	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Set(context.Background(), "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	cache := NewCache(New(config.RedisConfig{}), "sift")

	if got, want := cache.key("snapshot:AAPL:2026-08-21"), "sift:cache:snapshot:AAPL:2026-08-21"; got != want {
		t.Errorf("key() = %q, want %q", got, want)
	}
}

func TestSnapshotKey(t *testing.T) {
	day := time.Date(2026, 8, 21, 15, 4, 5, 0, time.UTC)

	got := SnapshotKey("AAPL", day)
	want := "snapshot:AAPL:2026-08-21"

	if got != want {
		t.Errorf("SnapshotKey() = %q, want %q", got, want)
	}
}
