package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/compiler"
	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/store"
)

// populate stores one run of each kind in a fresh database.
func populate(t *testing.T) (modelPath, dbPath string) {
	t.Helper()
	modelPath = writeModel(t, xyModelCUE)
	dbPath = filepath.Join(t.TempDir(), "runs.db")

	_, _, err := execute(t, "realize", modelPath, "--do", "X=1", "--db", dbPath)
	require.NoError(t, err)
	_, _, err = execute(t, "query", modelPath, "--clause", "Y[X=1] > Y[X=0]", "--db", dbPath)
	require.NoError(t, err)
	_, _, err = execute(t, "typeprob", modelPath, "--params", "0.5,0.5,0.25,0.25,0.25,0.25", "--db", dbPath)
	require.NoError(t, err)
	return modelPath, dbPath
}

func TestRuns_List(t *testing.T) {
	_, dbPath := populate(t)

	out, _, err := execute(t, "--format", "json", "runs", dbPath)
	require.NoError(t, err)

	var result RunsResult
	decodeResponse(t, out, &result)
	require.Equal(t, 3, result.Total)
	assert.Equal(t, store.KindRealize, result.Runs[0].Kind)
	assert.Equal(t, "X=1", result.Runs[0].Intervention)
	assert.Equal(t, store.KindQuery, result.Runs[1].Kind)
	assert.Equal(t, "Y[X=1] > Y[X=0]", result.Runs[1].Query)
	assert.Equal(t, store.KindTypeProb, result.Runs[2].Kind)
	assert.Empty(t, result.Verified)
}

func TestRuns_Verify(t *testing.T) {
	_, dbPath := populate(t)

	out, _, err := execute(t, "--format", "json", "runs", dbPath, "--verify")
	require.NoError(t, err)

	var result RunsResult
	decodeResponse(t, out, &result)
	assert.True(t, result.AllDeterministic)
	require.Len(t, result.Verified, 3)
	for _, v := range result.Verified[:2] {
		assert.True(t, v.Replayable, v.ID)
		assert.True(t, v.Deterministic, v.ID)
	}
	assert.Equal(t, "type_prob", result.Verified[2].Kind)
	assert.False(t, result.Verified[2].Replayable)
}

func TestRuns_VerifyText(t *testing.T) {
	_, dbPath := populate(t)

	out, _, err := execute(t, "runs", dbPath, "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "3 run(s)")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "✓ All replayable runs are deterministic")
}

func TestRuns_VerifyDetectsTampering(t *testing.T) {
	modelPath, dbPath := populate(t)

	m, err := compiler.LoadModel(modelPath)
	require.NoError(t, err)
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.WriteRealization(context.Background(), m, ir.Intervention{}, ir.NewIntMatrix(2, 8))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "runs", dbPath, "--verify")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "✗ Determinism verification failed")
}

func TestRuns_FilterByModel(t *testing.T) {
	modelPath, dbPath := populate(t)

	m, err := compiler.LoadModel(modelPath)
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "runs", dbPath, "--model", "nope")
	require.NoError(t, err)
	var none RunsResult
	decodeResponse(t, out, &none)
	assert.Zero(t, none.Total)

	out, _, err = execute(t, "--format", "json", "runs", dbPath, "--model", ir.MustModelHash(m))
	require.NoError(t, err)
	var all RunsResult
	decodeResponse(t, out, &all)
	assert.Equal(t, 3, all.Total)
}

func TestRuns_MissingDatabase(t *testing.T) {
	out, _, err := execute(t, "runs", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestRuns_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "runs", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found in database.")
}
