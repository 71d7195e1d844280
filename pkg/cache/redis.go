package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// clearBatch is how many keys Clear scans and deletes per round trip.
const clearBatch = 100

// RedisCache stores entries in Redis under a common key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the Redis instance at url
// (redis://[user:pass@]host:port/db) and verifies it with PING.
func NewRedisCache(ctx context.Context, url, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	c := NewRedisCacheFromClient(redis.NewClient(opts), prefix)
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client. The client is closed by
// Close.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. A zero ttl keeps the key indefinitely.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Clear deletes every key under the prefix. A cache without a prefix shares
// the whole database and refuses to clear it.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	if c.prefix == "" {
		return 0, fmt.Errorf("redis cache has no key prefix; refusing to clear the database")
	}

	count := 0
	batch := make([]string, 0, clearBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		count += int(n)
		batch = batch[:0]
		return err
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", clearBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return count, err
	}
	return count, flush()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
