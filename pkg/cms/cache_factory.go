package cms

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/sitecms-client/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeRedis represents a redis cache through go-redis.
	CacheTypeRedis CacheType = "redis"

	// CacheTypeValkey represents a valkey cache through valkey-go.
	CacheTypeValkey CacheType = "valkey"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// CacheConfig configures cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType `env:"TYPE" yaml:"type"`

	// MaxEntries bounds the memory backend. Zero uses the default; a negative
	// value leaves it unbounded.
	MaxEntries int `env:"MAX_ENTRIES" yaml:"max_entries"`

	// KeyPrefix namespaces shared backends; the site ID is appended
	KeyPrefix string `env:"KEY_PREFIX" yaml:"key_prefix"`

	// RedisURL is a redis:// URL for the redis backend, or host:port for valkey
	RedisURL string `env:"REDIS_URL" yaml:"redis_url"`

	// NATS KV cache configuration
	NATS NATSKVConfig `envPrefix:"NATS_" yaml:"nats"`
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Type:       CacheTypeMemory,
		MaxEntries: constants.DefaultCacheSize,
		KeyPrefix:  constants.DefaultCacheKeyPrefix,
		NATS: NATSKVConfig{
			Bucket: constants.DefaultNATSBucket,
		},
	}
}

// NewCacheFromConfig creates a cache backend for one site.
func NewCacheFromConfig(ctx context.Context, config CacheConfig, siteID string, ttl time.Duration) (Cache, error) {
	defaults := DefaultCacheConfig()
	if config.Type == "" {
		config.Type = defaults.Type
	}

	if config.MaxEntries == 0 {
		config.MaxEntries = defaults.MaxEntries
	}

	if config.KeyPrefix == "" {
		config.KeyPrefix = defaults.KeyPrefix
	}

	if config.NATS.Bucket == "" {
		config.NATS.Bucket = defaults.NATS.Bucket
	}

	prefix := config.KeyPrefix + siteID + ":"

	switch config.Type {
	case CacheTypeMemory:
		return NewMemoryCache(ttl, WithMaxEntries(config.MaxEntries)), nil

	case CacheTypeRedis:
		return NewRedisCacheFromURL(ctx, config.RedisURL, prefix, ttl)

	case CacheTypeValkey:
		return NewValkeyCacheFromAddress(ctx, config.RedisURL, prefix, ttl)

	case CacheTypeNATS:
		return NewNATSKVCache(&config.NATS, prefix, ttl)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCache, config.Type)
	}
}
