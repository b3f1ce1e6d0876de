// Package cache provides the TTL-bounded result cache for conversions.
//
// The cache is strictly an optimization: a miss (or an unavailable backend)
// always falls through to full recomputation and is never surfaced as an
// error. Keys are canonical playlist URLs; values are destination playlist
// URLs.
package cache

import (
	"sync"
	"time"
)

// Cache is the read-before-work / write-once-per-conversion contract the
// conversion engine depends on.
type Cache interface {
	// Get returns the cached value for key and whether a non-expired entry
	// exists. Absence is not an error.
	Get(key string) (string, bool)

	// Set stores value under key for the given TTL, replacing any previous
	// entry.
	Set(key, value string, ttl time.Duration)
}

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process Cache safe for concurrent use.
// Expired entries are dropped lazily on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key when a non-expired entry exists.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}

	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}

	return e.value, true
}

// Set stores value under key for the given TTL.
func (c *MemoryCache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
