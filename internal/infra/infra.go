// Package infra provides shared infrastructure used by the server and the
// CLI: a render cache, a hover-event throttle and the logger.
package infra

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// --- Render cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with TTL for rendered pages, SVG
// documents and view builds. A TTL <= 0 means entries never expire.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.expired(entry) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	entry := CacheEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// GetOrBuild returns the cached value for key, or calls build once and
// caches its result. Concurrent callers for the same key share one build.
// Errors are returned to every waiting caller and never cached.
func (c *Cache) GetOrBuild(key string, build func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	return v, err
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries. Can be called periodically.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	for k, v := range c.entries {
		if c.expired(v) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

func (c *Cache) expired(e CacheEntry) bool {
	return !e.ExpiresAt.IsZero() && c.now().After(e.ExpiresAt)
}

// --- Throttle ---

// Throttle is a token bucket used to drop excess pointer-move events in a
// live hover session. It never blocks.
type Throttle struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewThrottle creates a throttle that allows a burst of maxTokens events and
// then one more per refillRate. A refillRate <= 0 disables throttling.
func NewThrottle(maxTokens int, refillRate time.Duration) *Throttle {
	if maxTokens < 1 {
		maxTokens = 1
	}
	return &Throttle{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow reports whether an event may pass now, consuming a token if so.
func (t *Throttle) Allow() bool {
	if t == nil || t.refillRate <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refill()
	if t.tokens > 0 {
		t.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (t *Throttle) refill() {
	now := t.now()
	elapsed := now.Sub(t.lastRefill)
	if elapsed >= t.refillRate {
		periods := int(elapsed / t.refillRate)
		t.tokens += periods
		if t.tokens > t.maxTokens {
			t.tokens = t.maxTokens
		}
		t.lastRefill = t.lastRefill.Add(time.Duration(periods) * t.refillRate)
	}
}
