package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sakubijak/internal/log"
)

// Client wraps redis.Client and fails safe: connectivity errors behave like
// a miss on reads and are dropped on writes. A nil *Client is a valid,
// permanently empty cache.
type Client struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a Redis-backed client. An empty addr disables the cache and
// returns nil.
func New(addr, password string, db int, logger *slog.Logger) *Client {
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	return &Client{client: redis.NewClient(opts), logger: logger}
}

// NewWithClient wraps an existing redis client.
func NewWithClient(rc *redis.Client) *Client {
	return &Client{client: rc, logger: slog.Default()}
}

// Enabled reports whether a backing Redis is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Ping checks connectivity; a disabled cache always succeeds.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.Enabled() {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("cache get failed", log.FieldComponent, log.ComponentCache, "key", key, log.FieldError, err)
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", log.FieldComponent, log.ComponentCache, "key", key, log.FieldError, err)
	}
	return nil
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache delete failed", log.FieldComponent, log.ComponentCache, "key", key, log.FieldError, err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
