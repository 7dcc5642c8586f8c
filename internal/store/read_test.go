package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/testutil"
)

func TestListRuns_OrderAndFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	xy := testutil.XYModel()
	chain := testutil.ChainModel()

	_, err := s.WriteRealization(ctx, xy, nil, realize(t, xy, nil))
	require.NoError(t, err)
	_, err = s.WriteRealization(ctx, chain, nil, realize(t, chain, nil))
	require.NoError(t, err)
	_, err = s.WriteRealization(ctx, xy, ir.Intervention{"X": 0}, realize(t, xy, ir.Intervention{"X": 0}))
	require.NoError(t, err)

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, run := range all {
		assert.Equal(t, int64(i+1), run.Seq)
	}

	onlyXY, err := s.ListRuns(ctx, ir.MustModelHash(xy))
	require.NoError(t, err)
	require.Len(t, onlyXY, 2)
	assert.Equal(t, "run-0001", onlyXY[0].ID)
	assert.Equal(t, "run-0003", onlyXY[1].ID)
	assert.Equal(t, "X=0", onlyXY[1].Intervention)
}

func TestListRuns_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestRunInputs_ReplayReproducesMatrix(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := testutil.ChainModel()
	do := ir.Intervention{"M": 0}

	run, err := s.WriteRealization(ctx, m, do, realize(t, m, do))
	require.NoError(t, err)

	got, model, gotDo, err := s.RunInputs(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)
	assert.Equal(t, do, gotDo)

	stored, err := s.ReadMatrix(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ToRows(), realize(t, model, gotDo).ToRows())
}
