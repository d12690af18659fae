package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Cache stores serialized responses. Implementations expire entries lazily:
// an entry older than the TTL is removed by the Get that finds it.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	// Delete evicts a single key.
	Delete(ctx context.Context, key string) error
	// Clear drops every entry this cache owns.
	Clear(ctx context.Context) error
	// DeleteMatching drops entries whose key contains pattern.
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}

// CacheEntry is a cached response body.
type CacheEntry struct {
	Key      string    `json:"key,omitempty"`
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"stored_at"`
}

// Expired reports whether the entry is no longer valid at now.
func (e *CacheEntry) Expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(e.StoredAt) >= ttl
}

// encodeEntry serializes a copy of entry, stamping StoredAt with now when
// the caller left it zero.
func encodeEntry(key string, entry *CacheEntry, now time.Time) ([]byte, error) {
	stored := *entry
	stored.Key = key

	if stored.StoredAt.IsZero() {
		stored.StoredAt = now
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("encoding cache entry: %w", err)
	}

	return data, nil
}

func decodeEntry(data []byte) (*CacheEntry, error) {
	var entry CacheEntry

	err := json.Unmarshal(data, &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	return &entry, nil
}

// CacheStats counts cache activity on a client.
type CacheStats struct {
	Hits      int64 `json:"hits"      yaml:"hits"`
	Misses    int64 `json:"misses"    yaml:"misses"`
	Sets      int64 `json:"sets"      yaml:"sets"`
	Clears    int64 `json:"clears"    yaml:"clears"`
	Evictions int64 `json:"evictions" yaml:"evictions"`
}

// HitRate is hits over lookups, zero with no lookups.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// MemoryCacheOption configures a MemoryCache.
type MemoryCacheOption func(*MemoryCache)

// WithMaxEntries bounds the cache; the oldest entry is dropped to make room.
func WithMaxEntries(n int) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.maxEntries = n
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// MemoryCache is an in-process cache with a fixed TTL.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*CacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	evictions  atomic.Int64
}

// NewMemoryCache creates an in-memory cache. A zero ttl never expires.
func NewMemoryCache(ttl time.Duration, opts ...MemoryCacheOption) *MemoryCache {
	cache := &MemoryCache{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}

	if entry.Expired(c.ttl, c.now()) {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && current == entry {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
		c.mu.Unlock()

		return nil, ErrCacheMiss
	}

	return entry, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	stored := *entry
	stored.Key = key

	if stored.StoredAt.IsZero() {
		stored.StoredAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.entries[key] = &stored

	return nil
}

func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
	)

	for key, entry := range c.entries {
		if oldestKey == "" || entry.StoredAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.StoredAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions.Add(1)
	}
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mu.Unlock()

	return nil
}

// DeleteMatching implements Cache with a substring match.
func (c *MemoryCache) DeleteMatching(_ context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0

	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)

			removed++
		}
	}

	return removed, nil
}

// Len counts stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Evictions counts entries dropped for age or size.
func (c *MemoryCache) Evictions() int64 {
	return c.evictions.Load()
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheMiss
}

// Set does nothing.
func (c *NoOpCache) Set(context.Context, string, *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(context.Context, string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(context.Context) error {
	return nil
}

// DeleteMatching does nothing.
func (c *NoOpCache) DeleteMatching(context.Context, string) (int, error) {
	return 0, nil
}
