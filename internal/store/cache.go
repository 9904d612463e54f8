package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of redis.UniversalClient the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedCollection puts a Redis read-through cache in front of another
// collection. Point reads are cached; List always goes to the backing
// collection. Cache failures are logged and never fail the call.
type CachedCollection[T Record] struct {
	next   Collection[T]
	client RedisClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedCollection wraps next. Keys are "<prefix>:<id>".
func NewCachedCollection[T Record](next Collection[T], client RedisClient, prefix string, ttl time.Duration, logger *slog.Logger) *CachedCollection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCollection[T]{next: next, client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *CachedCollection[T]) key(id string) string {
	return c.prefix + ":" + id
}

// Get serves from the cache when possible and fills it on a miss.
func (c *CachedCollection[T]) Get(ctx context.Context, id string) (T, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", c.key(id))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", "key", c.key(id), "error", err)
	}

	v, err := c.next.Get(ctx, id)
	if err != nil {
		return v, err
	}
	c.fill(ctx, v)
	return v, nil
}

// List reads through to the backing collection.
func (c *CachedCollection[T]) List(ctx context.Context) ([]T, error) {
	return c.next.List(ctx)
}

// Put writes through and invalidates the cached entry.
func (c *CachedCollection[T]) Put(ctx context.Context, rec T) error {
	if err := c.next.Put(ctx, rec); err != nil {
		return err
	}
	c.invalidate(ctx, rec.RecordID())
	return nil
}

// Delete removes the record and its cached entry.
func (c *CachedCollection[T]) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedCollection[T]) fill(ctx context.Context, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(v.RecordID()), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", c.key(v.RecordID()), "error", err)
	}
}

func (c *CachedCollection[T]) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "key", c.key(id), "error", err)
	}
}
