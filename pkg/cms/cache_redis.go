package cms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in redis under a key prefix so several processes
// serving the same site share one cache.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCache wraps an existing go-redis client.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// NewRedisCacheFromURL dials redis from a redis:// URL and pings it.
func NewRedisCacheFromURL(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisCache, error) {
	if url == "" {
		return nil, ErrRedisURLRequired
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisCache(client, prefix, ttl), nil
}

func (c *RedisCache) prefixKey(key string) string {
	return c.prefix + key
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, c.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}

		return nil, fmt.Errorf("redis get: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		return nil, err
	}

	if entry.Expired(c.ttl, c.now()) {
		_ = c.client.Del(ctx, c.prefixKey(key)).Err()

		return nil, ErrCacheMiss
	}

	return entry, nil
}

// Set implements Cache. Redis also expires the key after the TTL.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := encodeEntry(key, entry, c.now())
	if err != nil {
		return err
	}

	err = c.client.Set(ctx, c.prefixKey(key), data, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefixKey(key)).Err()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Clear removes every key under the prefix with SCAN + DEL.
func (c *RedisCache) Clear(ctx context.Context) error {
	_, err := c.deletePattern(ctx, escapeGlob(c.prefix)+"*")

	return err
}

// DeleteMatching implements Cache.
func (c *RedisCache) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	return c.deletePattern(ctx, escapeGlob(c.prefix)+"*"+escapeGlob(pattern)+"*")
}

func (c *RedisCache) deletePattern(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, constants.CacheScanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}

			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// Close releases the redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(value string) string {
	return globEscaper.Replace(value)
}
