package ir

import "fmt"

// IntMatrix is a dense row-major integer matrix.
// Realized outcomes use one row per node and one column per causal type.
type IntMatrix struct {
	rows, cols int
	data       []int
}

// NewIntMatrix allocates a zeroed rows × cols matrix.
func NewIntMatrix(rows, cols int) *IntMatrix {
	return &IntMatrix{rows: rows, cols: cols, data: make([]int, rows*cols)}
}

// IntMatrixFromRows copies rows into a new matrix. All rows must share a length.
func IntMatrixFromRows(rows [][]int) (*IntMatrix, error) {
	if len(rows) == 0 {
		return NewIntMatrix(0, 0), nil
	}
	m := NewIntMatrix(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != m.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), m.cols)
		}
		copy(m.Row(i), r)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *IntMatrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *IntMatrix) Cols() int { return m.cols }

// Row returns row i. The slice aliases the matrix storage.
func (m *IntMatrix) Row(i int) []int {
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// At returns the value at (i, j).
func (m *IntMatrix) At(i, j int) int { return m.data[i*m.cols+j] }

// Set stores v at (i, j).
func (m *IntMatrix) Set(i, j, v int) { m.data[i*m.cols+j] = v }

// Data returns the row-major backing slice.
func (m *IntMatrix) Data() []int { return m.data }

// ToRows returns a deep copy as a slice of rows.
func (m *IntMatrix) ToRows() [][]int {
	out := make([][]int, m.rows)
	for i := range out {
		out[i] = append([]int(nil), m.Row(i)...)
	}
	return out
}

// FloatMatrix is a dense row-major float64 matrix.
// Parameter draws use one row per draw; type probabilities one row per draw
// and one column per causal type.
type FloatMatrix struct {
	rows, cols int
	data       []float64
}

// NewFloatMatrix allocates a zeroed rows × cols matrix.
func NewFloatMatrix(rows, cols int) *FloatMatrix {
	return &FloatMatrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// FloatMatrixFromRows copies rows into a new matrix. All rows must share a length.
func FloatMatrixFromRows(rows [][]float64) (*FloatMatrix, error) {
	if len(rows) == 0 {
		return NewFloatMatrix(0, 0), nil
	}
	m := NewFloatMatrix(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != m.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), m.cols)
		}
		copy(m.Row(i), r)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *FloatMatrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *FloatMatrix) Cols() int { return m.cols }

// Row returns row i. The slice aliases the matrix storage.
func (m *FloatMatrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// At returns the value at (i, j).
func (m *FloatMatrix) At(i, j int) float64 { return m.data[i*m.cols+j] }

// Data returns the row-major backing slice.
func (m *FloatMatrix) Data() []float64 { return m.data }

// ToRows returns a deep copy as a slice of rows.
func (m *FloatMatrix) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = append([]float64(nil), m.Row(i)...)
	}
	return out
}
