package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/fundlens/pkg/config"
)

// Client is an optional Redis connection. A disabled Client is valid:
// caching and quotas turn into no-ops and every run hits the provider.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb  *redis.Client
	addr string
}

// New connects when REDIS_ENABLED is set, otherwise returns a disabled client
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	addr := net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}

	return &Client{rdb: rdb, addr: addr}, nil
}

// Enabled reports whether a connection exists
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Addr is host:port, empty when disabled
func (c *Client) Addr() string {
	return c.addr
}

// Ping checks the connection (no-op when disabled)
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// Redis exposes the go-redis client; nil when disabled
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// IsNil reports a missing key
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
