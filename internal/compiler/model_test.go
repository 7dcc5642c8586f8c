package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/causalcore/internal/ir"
)

const xyCUE = `
model: {
	name: "xy"
	nodes: {
		X: {nodal_types: ["0", "1"]}
		Y: {
			parents: ["X"]
			nodal_types: ["Y00", "Y01", "Y10", "Y11"]
			table: {
				columns: [[0], [1]]
				rows: {Y00: [0, 0], Y01: [0, 1], Y10: [1, 0], Y11: [1, 1]}
			}
		}
	}
}
`

func compileString(t *testing.T, src string) (*ir.Model, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileModel(v.LookupPath(cue.ParsePath("model")))
}

func TestCompileModelBasic(t *testing.T) {
	m, err := compileString(t, xyCUE)
	require.NoError(t, err)

	assert.Equal(t, "xy", m.Name)
	require.Len(t, m.Nodes, 2)
	assert.Equal(t, []string{"X", "Y"}, m.NodeNames())
	assert.True(t, m.Nodes[0].Exogenous())
	assert.Nil(t, m.Nodes[0].Table)

	y := m.Nodes[1]
	assert.Equal(t, []string{"X"}, y.Parents)
	assert.Equal(t, []string{"Y00", "Y01", "Y10", "Y11"}, y.NodalTypes)
	require.NotNil(t, y.Table)
	assert.Equal(t, [][]int{{0}, {1}}, y.Table.Columns)
	assert.Equal(t, ir.TableRow{Label: "Y10", Values: []int{1, 0}}, y.Table.Rows[2])

	assert.Empty(t, Validate(m))
}

func TestCompileModelPreservesDeclarationOrder(t *testing.T) {
	m, err := compileString(t, `
		model: nodes: {
			Z: {}
			A: {parents: ["Z"]}
			M: {}
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "A", "M"}, m.NodeNames())
	assert.Equal(t, "model", m.Name, "name defaults to the struct label")
}

func TestCompileModelStandardBinaryTypes(t *testing.T) {
	m, err := compileString(t, `
		model: nodes: {
			X: {}
			Y: {parents: ["X"]}
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, m.Nodes[0].NodalTypes)
	assert.Equal(t, []string{"00", "10", "01", "11"}, m.Nodes[1].NodalTypes)
	assert.Empty(t, Validate(m))
}

func TestCompileModelRestrictedBinaryTypes(t *testing.T) {
	m, err := compileString(t, `
		model: nodes: {
			X: {}
			Y: {parents: ["X"], nodal_types: ["01", "11"]}
		}
	`)
	require.NoError(t, err)

	y := m.Nodes[1]
	require.NotNil(t, y.Table)
	require.Len(t, y.Table.Rows, 2)
	assert.Equal(t, []int{0, 1}, y.Table.Rows[0].Values)
	assert.Equal(t, []int{1, 1}, y.Table.Rows[1].Values)
}

func TestCompileModelIntegerLabels(t *testing.T) {
	m, err := compileString(t, `model: nodes: U: {nodal_types: [0, 1, 2]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, m.Nodes[0].NodalTypes)
}

func TestCompileModelRejectsFloats(t *testing.T) {
	_, err := compileString(t, `
		model: nodes: {
			X: {}
			Y: {
				parents: ["X"]
				nodal_types: ["a"]
				table: {columns: [[0.5]], rows: {a: [1]}}
			}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "nodes.Y.table.columns[0]", ce.Field)
}

func TestCompileModelMissingNodes(t *testing.T) {
	_, err := compileString(t, `model: name: "empty"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nodes is required")
}

func TestCompileModelTooManyBinaryParents(t *testing.T) {
	_, err := compileString(t, `
		model: nodes: {
			A: {}
			B: {}
			C: {}
			D: {}
			E: {}
			Y: {parents: ["A", "B", "C", "D", "E"]}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declare a table")
}

func TestBinaryNodalTypes(t *testing.T) {
	labels, table := BinaryNodalTypes(1)
	assert.Equal(t, []string{"00", "10", "01", "11"}, labels)
	assert.Equal(t, [][]int{{0}, {1}}, table.Columns)

	labels, table = BinaryNodalTypes(2)
	assert.Len(t, labels, 16)
	assert.Equal(t, [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, table.Columns, "first parent varies fastest")
	row, ok := table.Row("0001")
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 0, 1}, row.Values, "0001 is AND of both parents")
}

func TestLoadModelFileAndDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xy.cue")
	require.NoError(t, os.WriteFile(path, []byte("package xy\n"+xyCUE), 0o644))

	fromFile, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, "xy", fromFile.Name)

	fromDir, err := LoadModel(dir)
	require.NoError(t, err)
	assert.Equal(t, ir.MustModelHash(fromFile), ir.MustModelHash(fromDir))
}

func TestLoadModelErrors(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)

	_, err = LoadModel(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")

	_, err = CompileModelFile("bad.cue", []byte(`model: {`))
	require.Error(t, err)
	var ce *CompileError
	assert.ErrorAs(t, err, &ce)

	_, err = CompileModelFile("none.cue", []byte(`other: 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no top-level model")
}
