// Package redis implements domain.ResponseCache on top of go-redis/v9 for
// deployments that run more than one instance and want a shared cache.
// Cross-instance coherency is not guaranteed; last writer wins.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds connection parameters for the Redis-backed response cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// ResponseCache stores marshaled response payloads as plain string keys with
// a per-entry TTL. Size bounding is delegated to the Redis server's own
// eviction policy.
type ResponseCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a ResponseCache, pinging Redis to verify connectivity.
func New(ctx context.Context, cfg Config, ttl time.Duration, logger *slog.Logger) (*ResponseCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &ResponseCache{rdb: rdb, ttl: ttl, logger: logger}, nil
}

const keyPrefix = "marketd:resp:"

// Get returns the payload stored under key. Redis errors are logged and
// reported as a miss so a flaky cache never breaks a request.
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "redis: cache get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return b, true
}

// Put stores value under key with the configured TTL. Failures are logged
// and otherwise ignored.
func (c *ResponseCache) Put(ctx context.Context, key string, value []byte) {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "redis: cache put failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Close releases the underlying Redis connection pool.
func (c *ResponseCache) Close() error {
	return c.rdb.Close()
}
