package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreWritesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "causalcore_store_writes_total",
			Help: "Total number of run store writes",
		},
		[]string{"kind", "status"}, // kind: model, realize, query, type_prob
	)

	r.StoreBlobBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "causalcore_store_blob_bytes",
			Help:    "Compressed size of stored matrix blobs in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"kind"},
	)
}
