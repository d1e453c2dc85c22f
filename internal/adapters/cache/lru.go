package cache

import (
	"avifd/internal/core/domain"
	"bytes"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

var ErrInvalidMaxEntries = errors.New("max entries must be positive")

// LRUCache keeps at most maxEntries images, evicting the least recently used one.
type LRUCache struct {
	entries *lru.Cache[domain.CacheKey, []byte]
}

func NewLRUCache(maxEntries int) (*LRUCache, error) {
	if maxEntries <= 0 {
		return nil, ErrInvalidMaxEntries
	}

	entries, err := lru.NewWithEvict(maxEntries, func(key domain.CacheKey, _ []byte) {
		log.Debug().Str("key", key.String()).Msg("evicted cached image")
	})
	if err != nil {
		return nil, err
	}

	return &LRUCache{entries: entries}, nil
}

func (c *LRUCache) Get(key domain.CacheKey) ([]byte, bool) {
	data, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}

	return bytes.Clone(data), true
}

func (c *LRUCache) Put(key domain.CacheKey, data []byte) {
	c.entries.Add(key, bytes.Clone(data))
}

func (c *LRUCache) Len() int {
	return c.entries.Len()
}
