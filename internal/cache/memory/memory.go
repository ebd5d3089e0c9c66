// Package memory implements domain.ResponseCache as a mutex-guarded,
// process-local map with TTL expiry and a bounded entry count.
package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	writtenAt time.Time
}

// Cache is a bounded in-memory TTL cache. Entries expire a fixed duration
// after being written; once the cache exceeds its bound, the entry with the
// oldest write timestamp is evicted. The linear eviction scan is fine at the
// intended scale (tens of entries).
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a Cache with the given TTL and entry bound.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the payload stored under key, or false when the key is absent
// or its entry has outlived the TTL. Expired entries are deleted on read.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.writtenAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Put stores value under key, evicting the oldest entry when the bound is
// exceeded. The stored slice is returned as-is on Get; callers must not
// mutate a payload after caching it.
func (c *Cache) Put(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, writtenAt: c.now()}

	if len(c.entries) <= c.maxEntries {
		return
	}

	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range c.entries {
		if oldestKey == "" || e.writtenAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.writtenAt
		}
	}
	delete(c.entries, oldestKey)
}

// Len returns the current number of entries, counting expired ones that have
// not yet been touched by a read.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
