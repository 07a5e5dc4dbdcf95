package cache

import "time"

// LayeredCache checks a fast in-memory layer before a shared or disk layer
type LayeredCache struct {
	memory Cache
	remote Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memory, remote Cache) *LayeredCache {
	return &LayeredCache{memory: memory, remote: remote}
}

// Get retrieves a value, promoting remote hits into memory
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.remote.Get(key); found {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.remote.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.remote.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.remote.Clear()
}

// Close releases the remote layer
func (c *LayeredCache) Close() error {
	_ = c.memory.Close()
	return c.remote.Close()
}
