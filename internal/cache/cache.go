// Package cache provides TTL-keyed memoization for upstream API reads
// (Meta Graph API lists, details, insights). Keys are composite strings
// of resource type plus parameters, e.g. "meta:insights:act_123:7d".
//
// One Cache instance is constructed at process start and passed by
// reference to consumers; there is no package-level shared state.
package cache

import (
	"strings"
	"sync"
	"time"

	"adforge/internal/logging"
)

// Entry holds one cached value with its expiry.
type Entry struct {
	Key       string
	Data      any
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Cache is an in-memory TTL cache with prefix invalidation and a
// background sweeper.
//
// Concurrent reads are unsynchronized beyond the RWMutex. There is no
// single-flight deduplication: two concurrent misses for the same key
// may both invoke the fetch function and both store the result; the
// last write wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	maxSize int

	sweepOnce sync.Once
	stopOnce  sync.Once
	sweepStop chan struct{}
}

// Default TTLs per resource class. Insights are highly volatile,
// campaign/adset structure is moderately volatile, connected pages
// rarely change.
const (
	TTLInsights  = 2 * time.Minute
	TTLCampaigns = 5 * time.Minute
	TTLAdSets    = 5 * time.Minute
	TTLDetails   = 10 * time.Minute
	TTLPages     = 60 * time.Minute
)

// DefaultSweepInterval is how often the sweeper removes expired entries.
const DefaultSweepInterval = 5 * time.Minute

// New creates a cache bounded to maxSize entries. Past the bound the
// oldest entry (by creation time) is evicted on insert.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 4096
	}
	return &Cache{
		entries:   make(map[string]*Entry),
		maxSize:   maxSize,
		sweepStop: make(chan struct{}),
	}
}

// Get retrieves a live cached value by key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Data, true
}

// Set stores a value with the given TTL.
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := time.Now()
	c.entries[key] = &Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// GetOrFetch returns a live cached value if present; otherwise it
// invokes fetch, stores the result with a fresh expiry, and returns it.
// Fetch errors are returned without caching.
func (c *Cache) GetOrFetch(key string, ttl time.Duration, fetch func() (any, error)) (any, error) {
	if data, ok := c.Get(key); ok {
		logging.CacheDebug("hit: %s", key)
		return data, nil
	}

	logging.CacheDebug("miss: %s", key)
	data, err := fetch()
	if err != nil {
		return nil, err
	}
	c.Set(key, data, ttl)
	return data, nil
}

// InvalidatePrefix removes every entry whose key starts with the
// prefix. Returns the number of entries removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		logging.CacheDebug("invalidated %d entries with prefix %s", removed, prefix)
	}
	return removed
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Size returns the number of entries currently held, expired included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper launches the background goroutine that removes expired
// entries every interval, independent of access patterns, to bound
// memory. Safe to call once; Stop terminates it.
func (c *Cache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	c.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					removed := c.sweep()
					if removed > 0 {
						logging.CacheDebug("sweeper removed %d expired entries", removed)
					}
				case <-c.sweepStop:
					return
				}
			}
		}()
	})
}

// Stop terminates the sweeper goroutine. Safe to call concurrently and
// more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.sweepStop)
	})
}

// sweep removes expired entries and returns how many were removed.
func (c *Cache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// evictOldest removes the oldest entry by creation time.
// Caller must hold the write lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.CreatedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.CreatedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
