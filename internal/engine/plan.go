package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/roach88/causalcore/internal/compiler"
	"github.com/roach88/causalcore/internal/ir"
)

// maxDenseSpan bounds the dense lookup arrays. Wider value ranges and key
// spaces fall back to maps.
const maxDenseSpan = 1 << 16

// plan is the compiled, read-only form of a model.
//
// CRITICAL: a plan is shared by every worker and every call that hits the
// cache. Nothing in it may be written after compilePlan returns.
type plan struct {
	hash  string
	names []string
	index map[string]int
	space *TypeSpace
	order []int // topological order of node indexes
	nodes []nodePlan
}

// nodePlan holds one node's lookup tables.
type nodePlan struct {
	name      string
	exogenous bool

	// Exogenous nodes: output value per nodal-type position.
	values []int

	// Endogenous nodes.
	parents []int        // parent node indexes, in parent-declaration order
	digits  []digitIndex // per parent: value → dense digit
	strides []int        // per parent: digit weight in the composite key
	cells   cellIndex    // composite key → table column
	ncols   int          // table columns
	outputs []int        // outputs[pos*ncols+col]
	missing map[int]bool // positions whose nodal type has no table row
	labels  []string     // nodal-type labels, for error messages
	noTable bool         // endogenous node declared without a table
}

// digitIndex maps a parent value to its dense digit, -1 when absent.
type digitIndex struct {
	lo    int
	dense []int32
	m     map[int]int
}

func newDigitIndex(values []int) digitIndex {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var d digitIndex
	if len(sorted) == 0 {
		return d
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if span, ok := spanOf(lo, hi); ok && span <= maxDenseSpan {
		d.lo = lo
		d.dense = make([]int32, span)
		for i := range d.dense {
			d.dense[i] = -1
		}
		for digit, v := range sorted {
			d.dense[v-lo] = int32(digit)
		}
		return d
	}
	d.m = make(map[int]int, len(sorted))
	for digit, v := range sorted {
		d.m[v] = digit
	}
	return d
}

// spanOf returns hi-lo+1 when it fits in an int.
func spanOf(lo, hi int) (int, bool) {
	span := hi - lo + 1
	if span <= 0 {
		return 0, false
	}
	return span, true
}

func (d *digitIndex) radix() int {
	if d.m != nil {
		return len(d.m)
	}
	n := 0
	for _, v := range d.dense {
		if v >= 0 {
			n++
		}
	}
	return n
}

func (d *digitIndex) lookup(v int) int {
	if d.m != nil {
		if digit, ok := d.m[v]; ok {
			return digit
		}
		return -1
	}
	off := v - d.lo
	if off < 0 || off >= len(d.dense) {
		return -1
	}
	return int(d.dense[off])
}

// cellIndex maps a composite key to a table column, -1 when absent.
type cellIndex struct {
	dense []int32
	m     map[int]int
}

func (c *cellIndex) lookup(key int) int {
	if c.m != nil {
		if col, ok := c.m[key]; ok {
			return col
		}
		return -1
	}
	if key < 0 || key >= len(c.dense) {
		return -1
	}
	return int(c.dense[key])
}

// compilePlan builds the lookup plan for m. Structural problems that make the
// model unusable are INVALID_MODEL or CYCLE_DETECTED; missing table rows are
// recorded and reported as LOOKUP_MISS only when the node is realized.
func compilePlan(m *ir.Model, hash string) (*plan, error) {
	if len(m.Nodes) == 0 {
		return nil, newError(ErrCodeInvalidModel, "", "model has no nodes")
	}

	p := &plan{
		hash:  hash,
		names: m.NodeNames(),
		index: make(map[string]int, len(m.Nodes)),
		nodes: make([]nodePlan, len(m.Nodes)),
	}
	for i, n := range m.Nodes {
		if _, dup := p.index[n.Name]; dup {
			return nil, newError(ErrCodeInvalidModel, n.Name, "duplicate node name")
		}
		p.index[n.Name] = i
	}
	for _, n := range m.Nodes {
		for _, parent := range n.Parents {
			if _, ok := p.index[parent]; !ok {
				return nil, newError(ErrCodeInvalidModel, n.Name, "unknown parent %q", parent)
			}
		}
	}

	space, err := NewTypeSpace(m.Cardinalities())
	if err != nil {
		return nil, err
	}
	p.space = space

	order, err := compiler.TopologicalOrder(m)
	if err != nil {
		var ce *compiler.CycleError
		if errors.As(err, &ce) {
			re := &RuntimeError{Code: ErrCodeCycleDetected, Message: ce.Error()}
			if len(ce.Path) > 0 {
				re.Node = ce.Path[0]
			}
			return nil, re
		}
		return nil, newError(ErrCodeInvalidModel, "", "%v", err)
	}
	p.order = order

	for i, n := range m.Nodes {
		np, err := compileNode(n, p.index)
		if err != nil {
			return nil, err
		}
		p.nodes[i] = np
	}
	return p, nil
}

func compileNode(n ir.Node, index map[string]int) (nodePlan, error) {
	np := nodePlan{name: n.Name, exogenous: n.Exogenous(), labels: n.NodalTypes}

	if np.exogenous {
		np.values = make([]int, len(n.NodalTypes))
		for pos, label := range n.NodalTypes {
			v, err := ir.ExogenousValue(label)
			if err != nil {
				return np, newError(ErrCodeInvalidModel, n.Name, "exogenous label %q is not an integer", label)
			}
			np.values[pos] = v
		}
		return np, nil
	}

	np.parents = make([]int, len(n.Parents))
	for j, parent := range n.Parents {
		np.parents[j] = index[parent]
	}
	if n.Table == nil {
		np.noTable = true
		return np, nil
	}

	t := n.Table
	np.ncols = len(t.Columns)
	for c, col := range t.Columns {
		if len(col) != len(n.Parents) {
			return np, newError(ErrCodeInvalidModel, n.Name, "table column %d has %d values, node has %d parents", c, len(col), len(n.Parents))
		}
	}

	// Per-parent digits and strides: key = Σ digit_j · stride_j.
	np.digits = make([]digitIndex, len(n.Parents))
	np.strides = make([]int, len(n.Parents))
	keySpace := 1
	for j := range n.Parents {
		values := make([]int, len(t.Columns))
		for c, col := range t.Columns {
			values[c] = col[j]
		}
		np.digits[j] = newDigitIndex(values)
		np.strides[j] = keySpace
		next, ok := mulChecked(keySpace, max(np.digits[j].radix(), 1))
		if !ok {
			return np, newError(ErrCodeCapacityExceeded, n.Name, "parent-value key space overflows int")
		}
		keySpace = next
	}

	keys := make([]int, len(t.Columns))
	for c, col := range t.Columns {
		key := 0
		for j, v := range col {
			key += np.digits[j].lookup(v) * np.strides[j]
		}
		keys[c] = key
	}
	if keySpace <= maxDenseSpan || keySpace <= 4*len(t.Columns) {
		np.cells.dense = make([]int32, keySpace)
		for i := range np.cells.dense {
			np.cells.dense[i] = -1
		}
	} else {
		np.cells.m = make(map[int]int, len(t.Columns))
	}
	for c, key := range keys {
		if np.cells.lookup(key) >= 0 {
			return np, newError(ErrCodeInvalidModel, n.Name, "duplicate parent-value combination %v", t.Columns[c])
		}
		if np.cells.m != nil {
			np.cells.m[key] = c
		} else {
			np.cells.dense[key] = int32(c)
		}
	}

	np.outputs = make([]int, len(n.NodalTypes)*np.ncols)
	for pos, label := range n.NodalTypes {
		row, ok := t.Row(label)
		if !ok {
			if np.missing == nil {
				np.missing = make(map[int]bool)
			}
			np.missing[pos] = true
			continue
		}
		if len(row.Values) != np.ncols {
			return np, newError(ErrCodeInvalidModel, n.Name, "table row %q has %d values, table has %d columns", label, len(row.Values), np.ncols)
		}
		copy(np.outputs[pos*np.ncols:], row.Values)
	}

	return np, nil
}

// keyFor computes the composite key of causal type i from the realized parent
// rows. It returns the offending parent index when a value is not in the table.
func (np *nodePlan) keyFor(parentRows [][]int, i int) (key int, badParent int) {
	for j, row := range parentRows {
		d := np.digits[j].lookup(row[i])
		if d < 0 {
			return -1, j
		}
		key += d * np.strides[j]
	}
	return key, -1
}

// missingRowError reports the first nodal type without a table row.
func (np *nodePlan) missingRowError() error {
	if np.noTable {
		return newError(ErrCodeLookupMiss, np.name, "endogenous node has no outcome table")
	}
	for pos, label := range np.labels {
		if np.missing[pos] {
			return newError(ErrCodeLookupMiss, np.name, "no table row for nodal type %q", label)
		}
	}
	return nil
}

func (p *plan) lookupMiss(np *nodePlan, parentRows [][]int, i int) error {
	vals := make([]int, len(parentRows))
	for j, row := range parentRows {
		vals[j] = row[i]
	}
	names := make([]string, len(np.parents))
	for j, pi := range np.parents {
		names[j] = p.names[pi]
	}
	return &RuntimeError{
		Code:    ErrCodeLookupMiss,
		Node:    np.name,
		Message: fmt.Sprintf("no table column for parents %v = %v", names, vals),
		Details: map[string]string{"causal_type": strconv.Itoa(i)},
	}
}
