package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "--format", "json", "types", path)
	require.NoError(t, err)

	var result TypesResult
	decodeResponse(t, out, &result)
	assert.Equal(t, 8, result.CausalTypes)
	assert.Equal(t, []string{"X", "Y"}, result.Nodes)
	require.Len(t, result.Types, 8)
	assert.Equal(t, []string{"0", "Y00"}, result.Types[0])
	assert.Equal(t, []string{"1", "Y00"}, result.Types[1])
	assert.Equal(t, []string{"0", "Y01"}, result.Types[2])
	assert.Equal(t, []string{"1", "Y11"}, result.Types[7])
}

func TestTypes_Limit(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "types", path, "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "8 causal type(s)")
	assert.Contains(t, out, "... 6 more")
}

func TestRealize(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "realize", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Realized xy: 2 node(s) × 8 causal type(s)")
	assert.Contains(t, out, "X: 0 1 0 1 0 1 0 1")
	assert.Contains(t, out, "Y: 0 0 0 1 1 0 1 1")
}

func TestRealize_Intervention(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "--format", "json", "realize", path, "--do", "X=1")
	require.NoError(t, err)

	var result RealizeResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "X=1", result.Intervention)
	assert.Equal(t, [][]int{
		{1, 1, 1, 1, 1, 1, 1, 1},
		{0, 0, 1, 1, 0, 0, 1, 1},
	}, result.Outcomes)
	assert.Empty(t, result.RunID)
}

func TestRealize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model string
		args  []string
		exit  int
		code  string
	}{
		{"malformed do", xyModelCUE, []string{"--do", "X"}, ExitCommandError, ErrCodeBadFlag},
		{"unknown do node", xyModelCUE, []string{"--do", "W=1"}, ExitFailure, "UNKNOWN_NODE"},
		{"lookup miss", ternaryModelCUE, nil, ExitFailure, "LOOKUP_MISS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeModel(t, tt.model)
			args := append([]string{"--format", "json", "realize", path}, tt.args...)

			out, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name    string
		clauses []string
		do      string
		want    []int
	}{
		{"observational", []string{"Y == 1"}, "", []int{0, 0, 0, 1, 1, 0, 1, 1}},
		{"positive effect", []string{"Y[X=1] > Y[X=0]"}, "", []int{0, 0, 1, 1, 0, 0, 0, 0}},
		{"conjunction", []string{"X == 1", "Y == 0"}, "", []int{0, 1, 0, 0, 0, 1, 0, 0}},
		{"semicolon clauses", []string{"X == 1; Y == 0"}, "", []int{0, 1, 0, 0, 0, 1, 0, 0}},
		{"base intervention", []string{"Y == 1"}, "X=1", []int{0, 0, 1, 1, 0, 0, 1, 1}},
	}

	path := writeModel(t, xyModelCUE)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"--format", "json", "query", path}
			for _, c := range tt.clauses {
				args = append(args, "--clause", c)
			}
			if tt.do != "" {
				args = append(args, "--do", tt.do)
			}

			out, _, err := execute(t, args...)
			require.NoError(t, err)

			var result QueryResult
			decodeResponse(t, out, &result)
			assert.Equal(t, tt.want, result.Result)
			assert.Equal(t, 8, result.CausalTypes)
		})
	}
}

func TestQuery_Text(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "query", path, "--clause", "Y == 1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Y == 1 holds for 4 of 8 causal type(s)")
	assert.Contains(t, out, "0 0 0 1 1 0 1 1")
}

func TestQuery_Errors(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	_, _, err := execute(t, "query", path)
	require.Error(t, err, "--clause is required")

	out, _, err := execute(t, "--format", "json", "query", path, "--clause", "Y ~ 1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBadFlag, resp.Error.Code)

	for clause, code := range map[string]string{
		"W == 1":      "BAD_OPERAND",
		"W[X=1] == 1": "UNKNOWN_NODE",
	} {
		out, _, err = execute(t, "--format", "json", "query", path, "--clause", clause)
		require.Error(t, err, clause)
		assert.Equal(t, ExitFailure, GetExitCode(err), clause)
		resp = decodeResponse(t, out, nil)
		require.NotNil(t, resp.Error, clause)
		assert.Equal(t, code, resp.Error.Code, clause)
	}
}

func TestTypeProb_Params(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "--format", "json", "typeprob", path,
		"--params", "0.5,0.5,0.25,0.25,0.25,0.25")
	require.NoError(t, err)

	var result TypeProbResult
	decodeResponse(t, out, &result)
	assert.Equal(t, []string{"X.0", "X.1", "Y.Y00", "Y.Y01", "Y.Y10", "Y.Y11"}, result.Parameters)
	assert.Equal(t, 8, result.CausalTypes)
	require.Len(t, result.Probabilities, 1)
	for _, p := range result.Probabilities[0] {
		assert.Equal(t, 0.125, p)
	}
}

func TestTypeProb_Draws(t *testing.T) {
	path := writeModel(t, xyModelCUE)
	draws := writeFile(t, "draws.yaml", `
- [0.5, 0.5, 0.25, 0.25, 0.25, 0.25]
- [1, 0, 1, 0, 0, 0]
`)

	out, _, err := execute(t, "--format", "json", "typeprob", path, "--draws", draws)
	require.NoError(t, err)

	var result TypeProbResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Probabilities, 2)
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 0}, result.Probabilities[1])
}

func TestTypeProb_Text(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	out, _, err := execute(t, "typeprob", path, "--params", "0.5,0.5,0.25,0.25,0.25,0.25")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1 draw(s) × 8 causal type(s)")
	assert.Contains(t, out, "draw 0 (sum 1)")
}

func TestTypeProb_Errors(t *testing.T) {
	path := writeModel(t, xyModelCUE)

	tests := []struct {
		name string
		args []string
		exit int
		code string
	}{
		{"wrong length", []string{"--params", "0.5,0.5"}, ExitFailure, "LENGTH_MISMATCH"},
		{"not a number", []string{"--params", "0.5,x"}, ExitCommandError, ErrCodeBadFlag},
		{"missing draws file", []string{"--draws", filepath.Join(t.TempDir(), "none.yaml")}, ExitCommandError, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "typeprob", path}, tt.args...)
			out, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	_, _, err := execute(t, "typeprob", path)
	require.Error(t, err, "one of --params or --draws is required")

	_, _, err = execute(t, "typeprob", path, "--params", "1", "--draws", "x.yaml")
	require.Error(t, err, "--params and --draws are mutually exclusive")
}
