package port

import (
	"avifd/internal/core/domain"
	"time"
)

type Metrics interface {
	// ObserveLookup records a cache lookup outcome.
	ObserveLookup(status domain.CacheStatus)
	// ObserveStage records the duration of a pipeline stage such as fetch or transform.
	ObserveStage(stage string, d time.Duration)
	// ObserveResult records the final outcome of a conversion request, nil meaning success.
	ObserveResult(err error)
	// SetCacheEntries reports the current number of cached entries.
	SetCacheEntries(n int)
}
