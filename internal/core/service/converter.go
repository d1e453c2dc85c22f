package service

import (
	"avifd/internal/core/domain"
	"avifd/internal/core/port"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	StageFetch     = "fetch"
	StageTransform = "transform"
)

// Converter runs the fetch, transform and cache steps for a single image request.
type Converter struct {
	fetcher     port.Fetcher
	transformer port.ImageTransformer
	cache       port.ResultCache
	metrics     port.Metrics
	timeout     time.Duration
	inflight    *singleflight.Group
}

type Option func(*Converter)

// WithMetrics reports lookups, stage durations and results to m.
func WithMetrics(m port.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// WithTimeout bounds every conversion. A zero timeout disables the deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Converter) {
		c.timeout = timeout
	}
}

// WithDeduplication collapses concurrent misses for the same key into one pipeline run.
func WithDeduplication() Option {
	return func(c *Converter) {
		c.inflight = &singleflight.Group{}
	}
}

func NewConverter(fetcher port.Fetcher, transformer port.ImageTransformer, cache port.ResultCache,
	opts ...Option) *Converter {
	c := &Converter{
		fetcher:     fetcher,
		transformer: transformer,
		cache:       cache,
		metrics:     noopMetrics{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert returns the encoded image for req, from the cache when possible.
func (c *Converter) Convert(ctx context.Context, req domain.ImageRequest) (domain.ConvertResult, error) {
	key := req.Key()

	l := log.Ctx(ctx).With().
		Str("url", req.SourceURL).
		Uint32("width", req.TargetWidth).
		Uint32("height", req.TargetHeight).
		Logger()

	if data, ok := c.cache.Get(key); ok {
		c.metrics.ObserveLookup(domain.CacheHit)
		c.metrics.ObserveResult(nil)
		l.Debug().Int("bytes", len(data)).Msg("serving cached image")

		return domain.ConvertResult{
			Image:  domain.EncodedImage{ContentType: domain.ContentType, Data: data},
			Status: domain.CacheHit,
		}, nil
	}

	c.metrics.ObserveLookup(domain.CacheMiss)
	l.Debug().Msg("cache miss, running pipeline")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	img, err := c.run(ctx, req, key)
	c.metrics.ObserveResult(err)
	if err != nil {
		l.Error().Err(err).Str("kind", string(domain.Kind(err))).Msg("conversion failed")
		return domain.ConvertResult{}, err
	}

	l.Info().Int("bytes", len(img.Data)).Msg("converted image")

	return domain.ConvertResult{Image: img, Status: domain.CacheMiss}, nil
}

func (c *Converter) run(ctx context.Context, req domain.ImageRequest, key domain.CacheKey) (domain.EncodedImage,
	error) {
	if c.inflight == nil {
		return c.produce(ctx, req, key)
	}

	// The shared run must outlive any single caller that goes away, but not the configured deadline.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.inflight.Do(key.String(), func() (interface{}, error) {
		// A previous run for this key may have finished between the caller's lookup and this one.
		if data, ok := c.cache.Get(key); ok {
			return domain.EncodedImage{ContentType: domain.ContentType, Data: data}, nil
		}

		runCtx := shared
		if c.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(shared, c.timeout)
			defer cancel()
		}

		return c.produce(runCtx, req, key)
	})
	if err != nil {
		return domain.EncodedImage{}, err
	}

	return v.(domain.EncodedImage), nil
}

func (c *Converter) produce(ctx context.Context, req domain.ImageRequest, key domain.CacheKey) (domain.EncodedImage,
	error) {
	start := time.Now()
	raw, err := c.fetcher.Fetch(ctx, req.SourceURL)
	c.metrics.ObserveStage(StageFetch, time.Since(start))
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("error fetching source: %w", err)
	}

	start = time.Now()
	img, err := c.transformer.Transform(raw, req.TargetWidth, req.TargetHeight)
	c.metrics.ObserveStage(StageTransform, time.Since(start))
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("error transforming image: %w", err)
	}

	c.cache.Put(key, img.Data)
	c.metrics.SetCacheEntries(c.cache.Len())

	return img, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveLookup(domain.CacheStatus) {}
func (noopMetrics) ObserveStage(string, time.Duration) {}
func (noopMetrics) ObserveResult(error) {}
func (noopMetrics) SetCacheEntries(int) {}
