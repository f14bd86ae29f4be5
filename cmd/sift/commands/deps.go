package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/marketsift/sift/internal/fundamentals"
	"github.com/marketsift/sift/internal/pipeline"
	"github.com/marketsift/sift/internal/ranking"
	"github.com/marketsift/sift/internal/strategy"
	"github.com/marketsift/sift/internal/universe"
	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/httputil"
	"github.com/marketsift/sift/pkg/logger"
	"github.com/marketsift/sift/pkg/redis"
)

// buildRunner wires the screening pipeline: constituent source, cached
// fundamentals provider, ranking engine. The returned cleanup closes
// whatever the cache opened.
func buildRunner(cfg *config.Config, workers int, log *logger.Logger) (*pipeline.Runner, func()) {
	universeClient := httputil.New(log, cfg.Universe.Timeout)
	source := universe.NewSlickcharts(cfg.Universe, universeClient, log)

	yahooClient := httputil.New(log, cfg.Yahoo.Timeout)
	provider := fundamentals.NewYahoo(cfg.Yahoo, yahooClient, log)

	cache, cleanup := buildSnapshotCache(cfg, log)
	cached := fundamentals.NewCachingProvider(provider, cache, log)

	engine := ranking.NewEngine(log)
	runner := pipeline.NewRunner(source, cached, engine, workers, log)

	return runner, cleanup
}

// buildSnapshotCache prefers Redis when enabled and reachable, and
// falls back to the in-process cache otherwise.
func buildSnapshotCache(cfg *config.Config, log *logger.Logger) (fundamentals.SnapshotCache, func()) {
	if cfg.Redis.Enabled {
		client := redis.New(cfg.Redis)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx)
		cancel()
		if err != nil {
			_ = client.Close()
			log.WithError(err).Warn("Redis unavailable, using in-memory snapshot cache")
			return fundamentals.NewMemoryCache(cfg.Screen.SnapshotTTL), func() {}
		}

		log.Info("Using Redis snapshot cache")
		return fundamentals.NewRedisCache(client, cfg.Screen.SnapshotTTL, log),
			func() { _ = client.Close() }
	}

	return fundamentals.NewMemoryCache(cfg.Screen.SnapshotTTL), func() {}
}

// resolveStrategy loads the strategy file at path, or returns the
// built-in defaults when path is empty. The hash identifies the exact
// parameter set in stored runs.
func resolveStrategy(path string) (*strategy.Config, string, error) {
	strat := strategy.Default()
	if path != "" {
		loaded, _, err := strategy.Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("load strategy: %w", err)
		}
		strat = loaded
	}

	hash, err := strategy.Hash(strat)
	if err != nil {
		return nil, "", fmt.Errorf("hash strategy: %w", err)
	}

	return strat, hash, nil
}
