package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)

	assert.NotNil(t, r.RealizationsTotal)
	assert.NotNil(t, r.QueriesTotal)
	assert.NotNil(t, r.StoreWritesTotal)
	assert.NotNil(t, r.GetPrometheusRegistry())
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}

func TestRecordRealization(t *testing.T) {
	r := NewRegistry()

	r.RecordRealization(8, 2*time.Millisecond, nil)
	r.RecordRealization(16, time.Millisecond, nil)
	r.RecordRealization(32, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RealizationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RealizationsTotal.WithLabelValues("error")))
	assert.Equal(t, 16.0, testutil.ToFloat64(r.LastCausalTypes), "failed runs do not update the gauge")

	var metric dto.Metric
	require.NoError(t, r.RealizeDuration.Write(&metric))
	assert.Equal(t, uint64(2), metric.Histogram.GetSampleCount())
}

func TestRecordQueryAndDraws(t *testing.T) {
	r := NewRegistry()

	r.RecordQuery(nil)
	r.RecordQuery(errors.New("bad"))
	r.RecordTypeProbDraws(5)
	r.RecordTypeProbDraws(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.QueriesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.QueriesTotal.WithLabelValues("error")))
	assert.Equal(t, 8.0, testutil.ToFloat64(r.TypeProbDrawsTotal))
}

func TestRecordPlanCache(t *testing.T) {
	r := NewRegistry()

	r.RecordPlanCache(false)
	r.RecordPlanCache(true)
	r.RecordPlanCache(true)
	r.RecordPlanEviction()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.PlanCacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PlanCacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PlanCacheEvictionsTotal))
}

func TestRecordStoreWrite(t *testing.T) {
	r := NewRegistry()

	r.RecordStoreWrite("realize", 512, nil)
	r.RecordStoreWrite("realize", 0, errors.New("disk"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.StoreWritesTotal.WithLabelValues("realize", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StoreWritesTotal.WithLabelValues("realize", "error")))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.RecordRealization(1, time.Second, nil)
		r.RecordQuery(nil)
		r.RecordTypeProbDraws(1)
		r.RecordPlanCache(true)
		r.RecordPlanEviction()
		r.RecordStoreWrite("model", 1, nil)
	})
}

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.RecordRealization(8, time.Millisecond, nil)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, `causalcore_realizations_total{status="ok"} 1`)
	assert.Contains(t, out, "causalcore_last_causal_types 8")
	assert.Contains(t, out, "# TYPE causalcore_realize_duration_seconds histogram")
}
