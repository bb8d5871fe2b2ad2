package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds every call; the Cache interface carries no context.
const redisTimeout = 2 * time.Second

// RedisCache stores JSON-encoded values in Redis under a key prefix, so several
// processes can share classifications. Redis errors are logged and reported as
// misses.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func NewRedisCache[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisCache[T] {
	return &RedisCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache[T]) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Redis get failed", "component", "cache", "key", key, "error", err)
		}
		return zero, false
	}
	var out T
	if err := json.Unmarshal(val, &out); err != nil {
		slog.Warn("Discarding undecodable cache entry", "component", "cache", "key", key, "error", err)
		return zero, false
	}
	return out, true
}

func (c *RedisCache[T]) Set(key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		slog.Warn("Redis set failed", "component", "cache", "key", key, "error", err)
	}
}

func (c *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	_ = c.client.Del(ctx, c.key(key)).Err()
}

// Size counts the keys under the prefix. Redis expires entries itself.
func (c *RedisCache[T]) Size() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	n := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		slog.Warn("Redis scan failed", "component", "cache", "error", err)
	}
	return n
}

// Ping checks connectivity.
func (c *RedisCache[T]) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
