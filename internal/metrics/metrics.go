package metrics

import (
	"io"
	"time"

	"github.com/prometheus/common/expfmt"
)

// All Record methods are no-ops on a nil *Registry so callers can leave
// metrics unconfigured.

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordRealization records a structural realization over n causal types
func (r *Registry) RecordRealization(n int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.RealizationsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		r.RealizeDuration.Observe(duration.Seconds())
		r.LastCausalTypes.Set(float64(n))
	}
}

// RecordQuery records a query evaluation
func (r *Registry) RecordQuery(err error) {
	if r == nil {
		return
	}
	r.QueriesTotal.WithLabelValues(status(err)).Inc()
}

// RecordTypeProbDraws records aggregated parameter draws
func (r *Registry) RecordTypeProbDraws(draws int) {
	if r == nil {
		return
	}
	r.TypeProbDrawsTotal.Add(float64(draws))
}

// RecordPlanCache records a plan cache lookup
func (r *Registry) RecordPlanCache(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.PlanCacheHitsTotal.Inc()
	} else {
		r.PlanCacheMissesTotal.Inc()
	}
}

// RecordPlanEviction records a plan evicted from the cache
func (r *Registry) RecordPlanEviction() {
	if r == nil {
		return
	}
	r.PlanCacheEvictionsTotal.Inc()
}

// RecordStoreWrite records a run store write and its blob size
func (r *Registry) RecordStoreWrite(kind string, blobBytes int, err error) {
	if r == nil {
		return
	}
	r.StoreWritesTotal.WithLabelValues(kind, status(err)).Inc()
	if err == nil && blobBytes > 0 {
		r.StoreBlobBytes.WithLabelValues(kind).Observe(float64(blobBytes))
	}
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
