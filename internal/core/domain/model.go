package domain

import "strconv"

// ContentType is the media type of every image the converter produces.
const ContentType = "image/avif"

// keyDelimiter separates the fields of a cache key. It is a control character and
// never appears in a valid URL.
const keyDelimiter = "\x1f"

type ImageRequest struct {
	SourceURL    string
	TargetWidth  uint32
	TargetHeight uint32
}

// ShouldResize reports whether both target dimensions are set.
func (r ImageRequest) ShouldResize() bool {
	return r.TargetWidth > 0 && r.TargetHeight > 0
}

// Key derives the cache key for the request.
func (r ImageRequest) Key() CacheKey {
	return CacheKey(r.SourceURL + keyDelimiter +
		strconv.FormatUint(uint64(r.TargetWidth), 10) + keyDelimiter +
		strconv.FormatUint(uint64(r.TargetHeight), 10))
}

type CacheKey string

func (k CacheKey) String() string {
	return string(k)
}

type EncodedImage struct {
	ContentType string
	Data        []byte
}

// CacheStatus tells whether a conversion was served from the result cache.
type CacheStatus string

const (
	CacheHit  CacheStatus = "HIT"
	CacheMiss CacheStatus = "MISS"
)

type ConvertResult struct {
	Image  EncodedImage
	Status CacheStatus
}
