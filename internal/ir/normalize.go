package ir

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// NormalizationError reports a model string that is not in Unicode NFC.
//
// Canonical documents normalize strings to NFC, so a model whose names are
// not already normalized would share its hash with its normalized twin while
// resolving names differently.
type NormalizationError struct {
	Field string // path inside the model, e.g. "nodes[0].parents[1]"
	Node  string // owning node; empty for the model name
	Value string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s %q is not NFC-normalized", e.Field, e.Value)
}

// NormalizationErrors returns every name and label of m that is not in NFC,
// in model order.
func NormalizationErrors(m *Model) []*NormalizationError {
	var errs []*NormalizationError
	check := func(field, node, s string) {
		if !norm.NFC.IsNormalString(s) {
			errs = append(errs, &NormalizationError{Field: field, Node: node, Value: s})
		}
	}

	check("name", "", m.Name)
	for i, n := range m.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		check(field+".name", n.Name, n.Name)
		for j, p := range n.Parents {
			check(fmt.Sprintf("%s.parents[%d]", field, j), n.Name, p)
		}
		for j, l := range n.NodalTypes {
			check(fmt.Sprintf("%s.nodal_types[%d]", field, j), n.Name, l)
		}
		if n.Table != nil {
			for j, r := range n.Table.Rows {
				check(fmt.Sprintf("%s.table.rows[%d]", field, j), n.Name, r.Label)
			}
		}
	}
	return errs
}

// CheckNormalized returns the first NormalizationError of m, or nil.
func CheckNormalized(m *Model) error {
	if errs := NormalizationErrors(m); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
