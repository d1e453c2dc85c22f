package cache

import (
	"avifd/internal/core/domain"
	"errors"

	"github.com/cespare/xxhash/v2"
)

var ErrInvalidShardCount = errors.New("shard count must be positive")

// ShardedCache spreads entries over independently locked partitions selected by a hash of the key.
type ShardedCache struct {
	shards []*MemoryCache
}

func NewShardedCache(shards int) (*ShardedCache, error) {
	if shards <= 0 {
		return nil, ErrInvalidShardCount
	}

	c := &ShardedCache{shards: make([]*MemoryCache, shards)}
	for i := range c.shards {
		c.shards[i] = NewMemoryCache()
	}

	return c, nil
}

func (c *ShardedCache) shard(key domain.CacheKey) *MemoryCache {
	return c.shards[xxhash.Sum64String(key.String())%uint64(len(c.shards))]
}

func (c *ShardedCache) Get(key domain.CacheKey) ([]byte, bool) {
	return c.shard(key).Get(key)
}

func (c *ShardedCache) Put(key domain.CacheKey, data []byte) {
	c.shard(key).Put(key, data)
}

func (c *ShardedCache) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.Len()
	}

	return n
}
