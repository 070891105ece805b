// Package cache provides the short-lived response cache used by the class
// listing endpoints. Cache failures are never surfaced to callers: a broken
// cache degrades to uncached reads.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fitstudio/pkg/logger"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type redisCache struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRedis(rdb *redis.Client, log *logger.Logger) Cache {
	return &redisCache{rdb: rdb, log: log}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "key", key, "error", err)
	}
}

type noopCache struct{}

// NewNoop returns a cache that stores nothing, for deployments without Redis.
func NewNoop() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (noopCache) Set(context.Context, string, []byte, time.Duration) {}
