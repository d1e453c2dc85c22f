package cache

import (
	"avifd/internal/core/port"
	"fmt"
)

const (
	ModeMemory  = "memory"
	ModeSharded = "sharded"
	ModeLRU     = "lru"
)

// New builds the result cache selected by mode.
func New(mode string, shards, maxEntries int) (port.ResultCache, error) {
	switch mode {
	case ModeMemory:
		return NewMemoryCache(), nil
	case ModeSharded:
		c, err := NewShardedCache(shards)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ModeLRU:
		c, err := NewLRUCache(maxEntries)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache mode %q", mode)
	}
}
