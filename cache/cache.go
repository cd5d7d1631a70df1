// Package cache provides a concurrent-safe in-memory string cache with no
// eviction and no size bound.
package cache

import "sync"

// NotFound is the conventional display value for a missing key.
// Get reports absence explicitly; use GetOrDefault(key, NotFound) when a
// printable value is wanted.
const NotFound = "Not Found"

// Cache maps string keys to string values.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Put inserts or overwrites the value stored for key.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}

// Get returns the value stored for key and whether it was present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// GetOrDefault returns the value stored for key, or def if key is absent.
func (c *Cache) GetOrDefault(key, def string) string {
	if value, ok := c.Get(key); ok {
		return value
	}
	return def
}

// Remove deletes key. Removing an absent key does nothing.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
