// Package cache provides in-memory stores for converted images.
package cache

import (
	"avifd/internal/core/domain"
	"bytes"
	"sync"
)

// MemoryCache is an unbounded map guarded by a single lock. Entries live until the process exits.
type MemoryCache struct {
	mutex   sync.RWMutex
	entries map[domain.CacheKey][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[domain.CacheKey][]byte)}
}

func (c *MemoryCache) Get(key domain.CacheKey) ([]byte, bool) {
	c.mutex.RLock()
	data, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok {
		return nil, false
	}

	return bytes.Clone(data), true
}

func (c *MemoryCache) Put(key domain.CacheKey, data []byte) {
	stored := bytes.Clone(data)

	c.mutex.Lock()
	c.entries[key] = stored
	c.mutex.Unlock()
}

func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}
