package redis

import (
	"context"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/marketsift/sift/pkg/config"
)

// Client gates the go-redis client behind the Enabled flag. With Redis
// disabled every operation is a no-op and every cache lookup misses, so
// callers never branch on availability.
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New builds a client from the snapshot-cache settings. It does not
// dial; call Ping to verify the server is reachable.
func New(cfg config.RedisConfig) *Client {
	if !cfg.Enabled {
		return &Client{}
	}

	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		enabled: true,
	}
}

// Ping checks the connection. Disabled clients always report healthy.
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a Redis server is configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis exposes the underlying client for operations Cache does not
// cover.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
