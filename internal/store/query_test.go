package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/engine"
	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/queryir"
	"github.com/roach88/causalcore/internal/testutil"
)

func mustQuery(t *testing.T, s string) queryir.Query {
	t.Helper()
	q, err := queryir.ParseQuery(s)
	require.NoError(t, err)
	return q
}

func TestQueryRun_MatchesInMemoryEvaluation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	queries := []string{
		"Y == 1",
		"X == 1; Y == 1",
		"Y != X",
		"M + Y",
		"X - Y",
		"M >= Y; X <= 0",
		"X && Y",
		"X || M",
		"X & M; Y | 0",
		"2 == 2",
	}

	m := testutil.ChainModel()
	for _, do := range []ir.Intervention{nil, {"M": 1}} {
		out := realize(t, m, do)
		run, err := s.WriteRealization(ctx, m, do, out)
		require.NoError(t, err)

		vectors := make(map[string][]int)
		for j, name := range m.NodeNames() {
			vectors[name] = out.Row(j)
		}
		for _, text := range queries {
			q := mustQuery(t, text)
			want, err := engine.Evaluate(vectors, out.Cols(), q)
			require.NoError(t, err, text)

			got, err := s.QueryRun(ctx, run.ID, q)
			require.NoError(t, err, text)
			assert.Equal(t, want, got, "%s under %v", text, do)
		}
	}
}

func TestQueryRun_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := testutil.XYModel()

	run, err := s.WriteRealization(ctx, m, nil, realize(t, m, nil))
	require.NoError(t, err)

	_, err = s.QueryRun(ctx, run.ID, mustQuery(t, "Y[X=1] == 1"))
	assert.ErrorContains(t, err, "not portable")

	_, err = s.QueryRun(ctx, run.ID, mustQuery(t, "W == 1"))
	assert.ErrorContains(t, err, "neither a node nor an integer")

	qrun, err := s.WriteQueryResult(ctx, m, mustQuery(t, "Y == 1"), nil, make([]int, 8))
	require.NoError(t, err)
	_, err = s.QueryRun(ctx, qrun.ID, mustQuery(t, "Y == 1"))
	assert.ErrorContains(t, err, "have no outcomes")
}
