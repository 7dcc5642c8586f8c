package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntMatrixRowAliasesStorage(t *testing.T) {
	m := NewIntMatrix(2, 3)
	row := m.Row(1)
	row[2] = 7

	assert.Equal(t, 7, m.At(1, 2))
	assert.Equal(t, []int{0, 0, 0, 0, 0, 7}, m.Data())
	assert.Len(t, m.Row(0), 3)
	assert.Equal(t, 3, cap(m.Row(0)), "row capacity must not reach the next row")
}

func TestIntMatrixFromRows(t *testing.T) {
	m, err := IntMatrixFromRows([][]int{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 2, m.Cols())
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, m.ToRows())

	_, err = IntMatrixFromRows([][]int{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestFloatMatrixFromRows(t *testing.T) {
	m, err := FloatMatrixFromRows([][]float64{{0.5, 1}, {0.25, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, m.At(1, 0), 1e-12)
	assert.Equal(t, [][]float64{{0.5, 1}, {0.25, 0}}, m.ToRows())

	_, err = FloatMatrixFromRows([][]float64{{1}, {}})
	assert.Error(t, err)
}

func TestIncidenceColumnMajor(t *testing.T) {
	inc, err := IncidenceFromRows([][]int{
		{1, 0, 1},
		{0, 1, 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, inc.Params)
	assert.Equal(t, 3, inc.Types)
	assert.Equal(t, []uint8{1, 0, 0, 1, 1, 1}, inc.Data)
	assert.Equal(t, []uint8{0, 1}, inc.Column(1))
	assert.Equal(t, uint8(1), inc.At(0, 2))
	assert.Equal(t, [][]int{{1, 0, 1}, {0, 1, 1}}, inc.ToRows())
}

func TestIncidenceRejectsNonBinary(t *testing.T) {
	_, err := IncidenceFromRows([][]int{{2}})
	assert.Error(t, err)

	_, err = IncidenceFromRows([][]int{{1, 0}, {1}})
	assert.Error(t, err)
}
