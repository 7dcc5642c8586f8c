package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/metrics"
	"github.com/roach88/causalcore/internal/testutil"
)

func TestWriteModel_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := testutil.XYModel()

	h1, err := s.WriteModel(ctx, m, 8)
	require.NoError(t, err)
	h2, err := s.WriteModel(ctx, m, 8)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, ir.MustModelHash(m), h1)

	var count int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM models`).Scan(&count))
	assert.Equal(t, 1, count)

	back, err := s.ReadModel(ctx, h1)
	require.NoError(t, err)
	assert.Equal(t, h1, ir.MustModelHash(back))
}

func TestWriteModel_RejectsUnnormalizedTwin(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	single := func(name string) *ir.Model {
		return &ir.Model{Name: "accent", Nodes: []ir.Node{{Name: name, NodalTypes: []string{"0", "1"}}}}
	}

	_, err := s.WriteModel(ctx, single("\u00e9"), 2)
	require.NoError(t, err)
	_, err = s.WriteModel(ctx, single("e\u0301"), 2)
	require.Error(t, err)

	var count int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM models`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWriteRealization_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := testutil.ChainModel()
	do := ir.Intervention{"X": 1}
	out := realize(t, m, do)

	run, err := s.WriteRealization(ctx, m, do, out)
	require.NoError(t, err)
	assert.Equal(t, "run-0001", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, KindRealize, run.Kind)
	assert.Equal(t, "X=1", run.Intervention)
	assert.Equal(t, 3, run.Rows)
	assert.Equal(t, 32, run.Cols)
	assert.Equal(t, ir.EngineVersion, run.EngineVersion)

	back, err := s.ReadMatrix(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(out.ToRows(), back.ToRows()); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}

	n, err := s.countOutcomes(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3*32, n)

	stored, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, stored)
}

func TestWriteRealization_ShapeMismatch(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteRealization(context.Background(), testutil.XYModel(), nil, ir.NewIntMatrix(3, 8))
	assert.ErrorContains(t, err, "3 rows")
}

func TestWriteQueryResult(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := testutil.XYModel()
	result := []int{0, 0, 1, 1, 0, 0, 1, 1}

	run, err := s.WriteQueryResult(ctx, m, mustQuery(t, "Y[X=1] == 1"), ir.Intervention{"X": 0}, result)
	require.NoError(t, err)
	assert.Equal(t, KindQuery, run.Kind)
	assert.Equal(t, "Y[X=1] == 1", run.Query)
	assert.Equal(t, "X=0", run.Intervention)

	back, err := s.ReadMatrix(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, result, back.Row(0))

	n, err := s.countOutcomes(ctx, run.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteTypeProbs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	probs, err := ir.FloatMatrixFromRows([][]float64{{0.1, 0.2}, {0.3, 0.4}})
	require.NoError(t, err)

	m := testutil.ExogenousModel([]string{"0", "1"})
	run, err := s.WriteTypeProbs(ctx, m, probs)
	require.NoError(t, err)
	assert.Equal(t, KindTypeProb, run.Kind)

	back, err := s.ReadFloatMatrix(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, probs.ToRows(), back.ToRows())

	_, err = s.ReadMatrix(ctx, run.ID)
	assert.ErrorContains(t, err, "type_prob run")
}

func TestWrite_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	s := createTestStore(t, WithMetrics(reg))
	ctx := context.Background()
	m := testutil.XYModel()

	_, err := s.WriteRealization(ctx, m, nil, realize(t, m, nil))
	require.NoError(t, err)
	_, err = s.WriteQueryResult(ctx, m, mustQuery(t, "Y == 1"), nil, make([]int, 8))
	require.NoError(t, err)

	assert.Equal(t, float64(1), promtest.ToFloat64(reg.StoreWritesTotal.WithLabelValues("realize", "ok")))
	assert.Equal(t, float64(1), promtest.ToFloat64(reg.StoreWritesTotal.WithLabelValues("query", "ok")))
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.ReadRun(ctx, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = s.ReadMatrix(ctx, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = s.ReadModel(ctx, "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
