package cms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSKVConfig configures the JetStream key-value cache.
type NATSKVConfig struct {
	URL    string `env:"URL"    yaml:"url"`
	Bucket string `env:"BUCKET" yaml:"bucket"`
}

// NATSKVCache stores entries in a JetStream key-value bucket. Keys are hashed
// because bucket keys only allow a restricted alphabet; the original key is
// kept inside the entry for pattern invalidation.
type NATSKVCache struct {
	conn      *nats.Conn
	kv        nats.KeyValue
	namespace string
	ttl       time.Duration
	now       func() time.Time
}

// NewNATSKVCache connects to NATS and opens (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig, prefix string, ttl time.Duration) (*NATSKVCache, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(config.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening JetStream: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    ttl,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening key-value bucket %s: %w", config.Bucket, err)
	}

	return &NATSKVCache{
		conn:      conn,
		kv:        kv,
		namespace: natsNamespace(prefix),
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// natsNamespace maps a key prefix onto the bucket key alphabet. The readable
// part is lossy, so a digest of the raw prefix keeps distinct sites apart.
func natsNamespace(prefix string) string {
	var builder strings.Builder

	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}

	sum := sha256.Sum256([]byte(prefix))

	return builder.String() + "." + hex.EncodeToString(sum[:8]) + "."
}

func (c *NATSKVCache) bucketKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return c.namespace + hex.EncodeToString(sum[:])
}

// Get implements Cache.
func (c *NATSKVCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(c.bucketKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}

		return nil, fmt.Errorf("nats kv get: %w", err)
	}

	entry, err := decodeEntry(kvEntry.Value())
	if err != nil {
		return nil, err
	}

	if entry.Expired(c.ttl, c.now()) {
		_ = c.kv.Delete(c.bucketKey(key))

		return nil, ErrCacheMiss
	}

	return entry, nil
}

// Set implements Cache.
func (c *NATSKVCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	data, err := encodeEntry(key, entry, c.now())
	if err != nil {
		return err
	}

	_, err = c.kv.Put(c.bucketKey(key), data)
	if err != nil {
		return fmt.Errorf("nats kv put: %w", err)
	}

	return nil
}

// Delete implements Cache.
func (c *NATSKVCache) Delete(_ context.Context, key string) error {
	err := c.kv.Delete(c.bucketKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete: %w", err)
	}

	return nil
}

// Clear implements Cache.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.ownKeys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		err := c.kv.Delete(key)
		if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
			return fmt.Errorf("nats kv delete: %w", err)
		}
	}

	return nil
}

// DeleteMatching implements Cache. Each entry is read to recover its key.
func (c *NATSKVCache) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	keys, err := c.ownKeys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, bucketKey := range keys {
		kvEntry, err := c.kv.Get(bucketKey)
		if err != nil {
			continue
		}

		entry, err := decodeEntry(kvEntry.Value())
		if err != nil || !strings.Contains(entry.Key, pattern) {
			continue
		}

		if err := c.kv.Delete(bucketKey); err == nil {
			removed++
		}
	}

	return removed, nil
}

func (c *NATSKVCache) ownKeys(ctx context.Context) ([]string, error) {
	keys, err := c.kv.Keys(nats.Context(ctx))
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("nats kv keys: %w", err)
	}

	own := keys[:0]

	for _, key := range keys {
		if strings.HasPrefix(key, c.namespace) {
			own = append(own, key)
		}
	}

	return own, nil
}

// Close drains the NATS connection.
func (c *NATSKVCache) Close() error {
	return c.conn.Drain()
}
