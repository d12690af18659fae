package cms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
	valkey "github.com/valkey-io/valkey-go"
)

// ValkeyCache stores entries in a valkey (or redis) server through valkey-go.
type ValkeyCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewValkeyCache wraps an existing valkey client.
func NewValkeyCache(client valkey.Client, prefix string, ttl time.Duration) *ValkeyCache {
	return &ValkeyCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// NewValkeyCacheFromAddress connects to a single valkey node and pings it.
func NewValkeyCacheFromAddress(ctx context.Context, address, prefix string, ttl time.Duration) (*ValkeyCache, error) {
	if address == "" {
		return nil, ErrRedisURLRequired
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{address},
		AlwaysRESP2:       true,
		ForceSingleClient: true,
		DisableCache:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	err = client.Do(pingCtx, client.B().Ping().Build()).Error()
	if err != nil {
		client.Close()

		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	return NewValkeyCache(client, prefix, ttl), nil
}

// Get implements Cache.
func (c *ValkeyCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(c.prefix+key).Build())
	if err := resp.Error(); err != nil {
		if errors.Is(err, valkey.Nil) {
			return nil, ErrCacheMiss
		}

		return nil, fmt.Errorf("valkey get: %w", err)
	}

	data, err := resp.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("valkey get bytes: %w", err)
	}

	entry, err := decodeEntry(data)
	if err != nil {
		return nil, err
	}

	if entry.Expired(c.ttl, c.now()) {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheMiss
	}

	return entry, nil
}

// Set implements Cache.
func (c *ValkeyCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := encodeEntry(key, entry, c.now())
	if err != nil {
		return err
	}

	var cmd valkey.Completed
	if c.ttl > 0 {
		cmd = c.client.B().Set().Key(c.prefix + key).Value(string(data)).Px(c.ttl).Build()
	} else {
		cmd = c.client.B().Set().Key(c.prefix + key).Value(string(data)).Build()
	}

	err = c.client.Do(ctx, cmd).Error()
	if err != nil {
		return fmt.Errorf("valkey set: %w", err)
	}

	return nil
}

// Delete implements Cache.
func (c *ValkeyCache) Delete(ctx context.Context, key string) error {
	err := c.client.Do(ctx, c.client.B().Del().Key(c.prefix+key).Build()).Error()
	if err != nil {
		return fmt.Errorf("valkey del: %w", err)
	}

	return nil
}

// Clear implements Cache.
func (c *ValkeyCache) Clear(ctx context.Context) error {
	_, err := c.deletePattern(ctx, escapeGlob(c.prefix)+"*")

	return err
}

// DeleteMatching implements Cache.
func (c *ValkeyCache) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	return c.deletePattern(ctx, escapeGlob(c.prefix)+"*"+escapeGlob(pattern)+"*")
}

func (c *ValkeyCache) deletePattern(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		scan := c.client.B().Scan().Cursor(cursor).Match(pattern).Count(constants.CacheScanBatch).Build()

		entry, err := c.client.Do(ctx, scan).AsScanEntry()
		if err != nil {
			return removed, fmt.Errorf("valkey scan: %w", err)
		}

		if len(entry.Elements) > 0 {
			n, err := c.client.Do(ctx, c.client.B().Del().Key(entry.Elements...).Build()).AsInt64()
			if err != nil {
				return removed, fmt.Errorf("valkey del: %w", err)
			}

			removed += int(n)
		}

		cursor = entry.Cursor
		if cursor == 0 {
			return removed, nil
		}
	}
}

// Close releases the client.
func (c *ValkeyCache) Close() error {
	c.client.Close()

	return nil
}
