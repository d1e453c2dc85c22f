package metrics

import (
	"avifd/internal/core/domain"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "avifd"

const resultOK = "ok"

// Prometheus exports conversion metrics.
type Prometheus struct {
	requests     *prometheus.CounterVec
	lookups      *prometheus.CounterVec
	stages       *prometheus.HistogramVec
	cacheEntries prometheus.Gauge
}

// NewPrometheus registers the conversion metrics on reg, or the default registerer when reg is nil.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &Prometheus{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Conversion requests by outcome.",
		}, []string{"result"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome.",
		}, []string{"result"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Latency of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Number of images held in the result cache.",
		}),
	}

	for _, c := range []prometheus.Collector{p.requests, p.lookups, p.stages, p.cacheEntries} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return p, nil
}

func (p *Prometheus) ObserveLookup(status domain.CacheStatus) {
	switch status {
	case domain.CacheHit:
		p.lookups.WithLabelValues("hit").Inc()
	default:
		p.lookups.WithLabelValues("miss").Inc()
	}
}

func (p *Prometheus) ObserveStage(stage string, d time.Duration) {
	p.stages.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *Prometheus) ObserveResult(err error) {
	if err == nil {
		p.requests.WithLabelValues(resultOK).Inc()
		return
	}

	p.requests.WithLabelValues(string(domain.Kind(err))).Inc()
}

func (p *Prometheus) SetCacheEntries(n int) {
	p.cacheEntries.Set(float64(n))
}
