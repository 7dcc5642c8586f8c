package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.RealizationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "causalcore_realizations_total",
			Help: "Total number of structural realizations",
		},
		[]string{"status"}, // ok, error
	)

	r.RealizeDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "causalcore_realize_duration_seconds",
			Help:    "Duration of structural realizations in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
	)

	r.LastCausalTypes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "causalcore_last_causal_types",
			Help: "Number of causal types in the most recent realization",
		},
	)

	r.QueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "causalcore_queries_total",
			Help: "Total number of query evaluations",
		},
		[]string{"status"}, // ok, error
	)

	r.TypeProbDrawsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "causalcore_type_prob_draws_total",
			Help: "Total number of parameter draws aggregated into type probabilities",
		},
	)

	r.PlanCacheHitsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "causalcore_plan_cache_hits_total",
			Help: "Compiled plan cache hits",
		},
	)

	r.PlanCacheMissesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "causalcore_plan_cache_misses_total",
			Help: "Compiled plan cache misses",
		},
	)

	r.PlanCacheEvictionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "causalcore_plan_cache_evictions_total",
			Help: "Compiled plans evicted from the cache",
		},
	)
}
