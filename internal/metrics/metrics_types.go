package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Engine Metrics
	RealizationsTotal       *prometheus.CounterVec
	RealizeDuration         prometheus.Histogram
	LastCausalTypes         prometheus.Gauge
	QueriesTotal            *prometheus.CounterVec
	TypeProbDrawsTotal      prometheus.Counter
	PlanCacheHitsTotal      prometheus.Counter
	PlanCacheMissesTotal    prometheus.Counter
	PlanCacheEvictionsTotal prometheus.Counter

	// Store Metrics
	StoreWritesTotal *prometheus.CounterVec
	StoreBlobBytes   *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initEngineMetrics()
	r.initStoreMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
