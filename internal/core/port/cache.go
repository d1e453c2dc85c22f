package port

import "avifd/internal/core/domain"

type ResultCache interface {
	// Get returns a copy of the bytes stored under key, if any.
	Get(key domain.CacheKey) ([]byte, bool)
	// Put stores a copy of data under key, overwriting any previous entry.
	Put(key domain.CacheKey, data []byte)
	// Len returns the number of stored entries.
	Len() int
}
