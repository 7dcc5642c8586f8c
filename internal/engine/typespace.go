package engine

import "fmt"

// TypeSpace is the mixed-radix index space of causal types.
//
// With per-node cardinalities k_1..k_m (declaration order), causal type i in
// [0, N) assigns node j the nodal type at position (i / Each(j)) mod k_j.
// Each(j) is the product of the cardinalities declared before j, so the first
// declared node varies fastest.
type TypeSpace struct {
	cards []int
	each  []int
	times []int
	size  int
}

// NewTypeSpace builds the type space for the given cardinalities.
// Every cardinality must be at least 1. Products are overflow-checked; a space
// larger than int returns CAPACITY_EXCEEDED.
func NewTypeSpace(cards []int) (*TypeSpace, error) {
	m := len(cards)
	ts := &TypeSpace{
		cards: append([]int(nil), cards...),
		each:  make([]int, m),
		times: make([]int, m),
	}

	// each_j = Π_{t<j} k_t (sentinel 1 prepended)
	acc := 1
	for j, k := range cards {
		if k < 1 {
			return nil, newError(ErrCodeInvalidModel, "", "node %d has %d nodal types, need at least 1", j, k)
		}
		ts.each[j] = acc
		next, ok := mulChecked(acc, k)
		if !ok {
			return nil, newError(ErrCodeCapacityExceeded, "", "number of causal types overflows int at node %d", j)
		}
		acc = next
	}
	ts.size = acc

	// times_j = Π_{t>j} k_t (sentinel 1 appended); bounded by size, no overflow
	acc = 1
	for j := m - 1; j >= 0; j-- {
		ts.times[j] = acc
		acc *= cards[j]
	}

	return ts, nil
}

// Size returns N, the number of causal types.
func (ts *TypeSpace) Size() int { return ts.size }

// Nodes returns the number of nodes.
func (ts *TypeSpace) Nodes() int { return len(ts.cards) }

// Cardinality returns k_j.
func (ts *TypeSpace) Cardinality(j int) int { return ts.cards[j] }

// Each returns how many consecutive causal types share node j's position.
func (ts *TypeSpace) Each(j int) int { return ts.each[j] }

// Times returns how often node j's full label cycle repeats across the space.
func (ts *TypeSpace) Times(j int) int { return ts.times[j] }

// Position returns node j's nodal-type position in causal type i.
func (ts *TypeSpace) Position(j, i int) int {
	return (i / ts.each[j]) % ts.cards[j]
}

// Decode returns every node's position in causal type i.
func (ts *TypeSpace) Decode(i int) []int {
	pos := make([]int, len(ts.cards))
	for j := range pos {
		pos[j] = ts.Position(j, i)
	}
	return pos
}

// Encode is the inverse of Decode.
func (ts *TypeSpace) Encode(pos []int) (int, error) {
	if len(pos) != len(ts.cards) {
		return 0, NewLengthError("position vector", len(pos), len(ts.cards))
	}
	i := 0
	for j, p := range pos {
		if p < 0 || p >= ts.cards[j] {
			return 0, newError(ErrCodeInvalidModel, "", "position %d out of range for node %d (k=%d)", p, j, ts.cards[j])
		}
		i += p * ts.each[j]
	}
	return i, nil
}

// MakeCausalTypes returns, for each node, the length-N sequence of nodal-type
// labels across the type space: labels repeated each-wise Each(j) times, then
// the whole run repeated Times(j) times.
//
// The result holds N·m labels. Realization never needs it; it exists for
// display and export.
func MakeCausalTypes(labels [][]string) ([][]string, error) {
	cards := make([]int, len(labels))
	for j, l := range labels {
		cards[j] = len(l)
	}
	ts, err := NewTypeSpace(cards)
	if err != nil {
		return nil, err
	}
	if _, ok := mulChecked(ts.size, len(labels)); !ok {
		return nil, newError(ErrCodeCapacityExceeded, "", "label sequences overflow int")
	}

	out := make([][]string, len(labels))
	for j, l := range labels {
		out[j] = RepTimes(RepEach(l, ts.each[j]), ts.times[j])
	}
	return out, nil
}

// RepEach repeats every element of x n times in place: [a b], 2 → [a a b b].
func RepEach[T any](x []T, n int) []T {
	out := make([]T, 0, len(x)*n)
	for _, v := range x {
		for range n {
			out = append(out, v)
		}
	}
	return out
}

// RepTimes repeats the whole of x n times: [a b], 2 → [a b a b].
func RepTimes[T any](x []T, n int) []T {
	out := make([]T, 0, len(x)*n)
	for range n {
		out = append(out, x...)
	}
	return out
}

// String describes the space as "k1×k2×...=N".
func (ts *TypeSpace) String() string {
	s := ""
	for j, k := range ts.cards {
		if j > 0 {
			s += "×"
		}
		s += fmt.Sprint(k)
	}
	return fmt.Sprintf("%s=%d", s, ts.size)
}
