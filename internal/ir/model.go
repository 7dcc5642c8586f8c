package ir

import "strconv"

// Model is a compiled structural causal model.
//
// Nodes are kept in declaration order. That order fixes the row order of
// realized-outcome matrices and the digit order of the causal-type index.
type Model struct {
	Name  string `json:"name" validate:"required"`
	Nodes []Node `json:"nodes" validate:"required,min=1,dive"`
}

// Node is one variable of the model together with its admissible nodal types.
type Node struct {
	Name       string        `json:"name" validate:"required"`
	Parents    []string      `json:"parents,omitempty" validate:"dive,required"`
	NodalTypes []string      `json:"nodal_types" validate:"dive,required"`
	Table      *OutcomeTable `json:"table,omitempty"`
}

// Exogenous reports whether the node has no parents.
// Exogenous labels are the node's own output value.
func (n Node) Exogenous() bool {
	return len(n.Parents) == 0
}

// OutcomeTable maps (nodal-type label, parent-value combination) to an output.
//
// Columns holds one parent-value combination per column, values listed in
// parent-declaration order. Rows holds one row per nodal-type label with one
// output value per column.
type OutcomeTable struct {
	Columns [][]int    `json:"columns" validate:"required,min=1"`
	Rows    []TableRow `json:"rows" validate:"required,min=1,dive"`
}

// TableRow is the outcome vector of a single nodal type.
type TableRow struct {
	Label  string `json:"label" validate:"required"`
	Values []int  `json:"values" validate:"required"`
}

// Row returns the row for label.
func (t *OutcomeTable) Row(label string) (TableRow, bool) {
	if t == nil {
		return TableRow{}, false
	}
	for _, r := range t.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return TableRow{}, false
}

// NodeIndex returns the declaration index of the named node.
func (m *Model) NodeIndex(name string) (int, bool) {
	for i, n := range m.Nodes {
		if n.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Node returns the named node.
func (m *Model) Node(name string) (Node, bool) {
	i, ok := m.NodeIndex(name)
	if !ok {
		return Node{}, false
	}
	return m.Nodes[i], true
}

// NodeNames returns node names in declaration order.
func (m *Model) NodeNames() []string {
	names := make([]string, len(m.Nodes))
	for i, n := range m.Nodes {
		names[i] = n.Name
	}
	return names
}

// Cardinalities returns the number of nodal types per node in declaration order.
func (m *Model) Cardinalities() []int {
	cards := make([]int, len(m.Nodes))
	for i, n := range m.Nodes {
		cards[i] = len(n.NodalTypes)
	}
	return cards
}

// Labels returns the nodal-type labels per node in declaration order.
func (m *Model) Labels() [][]string {
	labels := make([][]string, len(m.Nodes))
	for i, n := range m.Nodes {
		labels[i] = n.NodalTypes
	}
	return labels
}

// Parameter identifies one model parameter: a nodal type of a node.
type Parameter struct {
	Node  string `json:"node"`
	Label string `json:"label"`
}

// String returns "node.label".
func (p Parameter) String() string {
	return p.Node + "." + p.Label
}

// Parameters returns one parameter per (node, label) pair, nodes in
// declaration order and labels in nodal-type order.
func (m *Model) Parameters() []Parameter {
	var params []Parameter
	for _, n := range m.Nodes {
		for _, l := range n.NodalTypes {
			params = append(params, Parameter{Node: n.Name, Label: l})
		}
	}
	return params
}

// ExogenousValue parses an exogenous label as its integer output.
func ExogenousValue(label string) (int, error) {
	return strconv.Atoi(label)
}
