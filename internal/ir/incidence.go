package ir

import "fmt"

// Incidence is the Params × Types 0/1 matrix relating parameters to causal
// types.
//
// CRITICAL: storage is column-major per causal type. Data[t*Params+p] is the
// entry for parameter p and causal type t, so one causal type's column is a
// contiguous slice.
type Incidence struct {
	Params int
	Types  int
	Data   []uint8
}

// NewIncidence allocates a zeroed incidence matrix.
func NewIncidence(params, types int) *Incidence {
	return &Incidence{Params: params, Types: types, Data: make([]uint8, params*types)}
}

// IncidenceFromRows builds an incidence matrix from parameter rows, one row per
// parameter and one entry per causal type. Entries must be 0 or 1.
func IncidenceFromRows(rows [][]int) (*Incidence, error) {
	if len(rows) == 0 {
		return NewIncidence(0, 0), nil
	}
	inc := NewIncidence(len(rows), len(rows[0]))
	for p, r := range rows {
		if len(r) != inc.Types {
			return nil, fmt.Errorf("parameter row %d has %d entries, want %d", p, len(r), inc.Types)
		}
		for t, v := range r {
			switch v {
			case 0:
			case 1:
				inc.Set(p, t, true)
			default:
				return nil, fmt.Errorf("incidence[%d][%d] = %d: entries must be 0 or 1", p, t, v)
			}
		}
	}
	return inc, nil
}

// At returns the entry for parameter p and causal type t.
func (inc *Incidence) At(p, t int) uint8 {
	return inc.Data[t*inc.Params+p]
}

// Set marks or clears parameter p for causal type t.
func (inc *Incidence) Set(p, t int, on bool) {
	var v uint8
	if on {
		v = 1
	}
	inc.Data[t*inc.Params+p] = v
}

// Column returns the entries of causal type t. The slice aliases storage.
func (inc *Incidence) Column(t int) []uint8 {
	return inc.Data[t*inc.Params : (t+1)*inc.Params]
}

// ToRows returns the matrix as parameter rows.
func (inc *Incidence) ToRows() [][]int {
	out := make([][]int, inc.Params)
	for p := range out {
		out[p] = make([]int, inc.Types)
		for t := range out[p] {
			out[p][t] = int(inc.At(p, t))
		}
	}
	return out
}
