package compiler

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/causalcore/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoNodes           = "E101" // model has no nodes
	ErrDuplicateNode     = "E102" // node name declared twice
	ErrUnknownParent     = "E103" // parent is not a declared node
	ErrSelfParent        = "E104" // node lists itself as parent
	ErrDuplicateLabel    = "E105" // nodal type label declared twice
	ErrExogenousLabel    = "E106" // exogenous label is not an integer
	ErrMissingTable      = "E107" // endogenous node without outcome table
	ErrRowWidth          = "E108" // table row length != column count
	ErrColumnWidth       = "E109" // column length != parent count
	ErrDuplicateColumn   = "E110" // parent-value combination listed twice
	ErrMissingRow        = "E111" // nodal type without table row
	ErrCycle             = "E112" // parent graph has a cycle
	ErrTypeSpaceOverflow = "E113" // product of cardinalities overflows
	ErrEmptyNodalTypes   = "E114" // node with no nodal types
	ErrStructConstraint  = "E115" // struct tag constraint failed
	ErrNotNormalized     = "E116" // name or label not in Unicode NFC
)

// ValidationError represents a model validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// structValidate returns the shared struct-tag validator.
func structValidate() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// ValidateStruct checks the `validate` struct tags of v and converts any
// failures to E115 validation errors.
func ValidateStruct(v any) []ValidationError {
	err := structValidate().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "struct", Message: err.Error(), Code: ErrStructConstraint}}
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("failed %q constraint", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed %q constraint (%s)", fe.Tag(), fe.Param())
		}
		out = append(out, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: msg,
			Code:    ErrStructConstraint,
		})
	}
	return out
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// Validate checks a compiled model.
// Returns all errors found (does not fail-fast).
func Validate(m *ir.Model) []ValidationError {
	var errs []ValidationError

	// E101: at least one node
	if len(m.Nodes) == 0 {
		return []ValidationError{{
			Field:   "nodes",
			Message: "model must declare at least one node",
			Code:    ErrNoNodes,
		}}
	}

	declared := make(map[string]bool, len(m.Nodes))
	for i, n := range m.Nodes {
		if declared[n.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("nodes[%d].name", i),
				Message: fmt.Sprintf("duplicate node name: %q", n.Name),
				Code:    ErrDuplicateNode,
			})
		}
		declared[n.Name] = true
	}

	for i, n := range m.Nodes {
		errs = append(errs, validateNode(i, n, declared)...)
	}

	// E116: names and labels must already be NFC
	for _, ne := range ir.NormalizationErrors(m) {
		errs = append(errs, ValidationError{
			Field:   ne.Field,
			Message: fmt.Sprintf("%q is not NFC-normalized", ne.Value),
			Code:    ErrNotNormalized,
		})
	}

	// E112: cycles, reported once per strongly connected component
	for _, path := range FindCycles(m) {
		errs = append(errs, ValidationError{
			Field:   "nodes",
			Message: "cycle detected: " + strings.Join(path, " → "),
			Code:    ErrCycle,
		})
	}

	// E113: the type-space size must fit in an int
	size := 1
	for _, k := range m.Cardinalities() {
		hi, lo := bits.Mul(uint(size), uint(k))
		if hi != 0 || lo > uint(maxInt) {
			errs = append(errs, ValidationError{
				Field:   "nodes",
				Message: "number of causal types overflows int",
				Code:    ErrTypeSpaceOverflow,
			})
			break
		}
		size = int(lo)
	}

	return errs
}

const maxInt = int(^uint(0) >> 1)

func validateNode(i int, n ir.Node, declared map[string]bool) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("nodes[%d]", i)

	for _, fe := range ValidateStruct(n) {
		fe.Field = field + "." + fe.Field
		errs = append(errs, fe)
	}

	for j, p := range n.Parents {
		switch {
		case p == n.Name:
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.parents[%d]", field, j),
				Message: fmt.Sprintf("node %q cannot be its own parent", n.Name),
				Code:    ErrSelfParent,
			})
		case !declared[p]:
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.parents[%d]", field, j),
				Message: fmt.Sprintf("unknown parent %q", p),
				Code:    ErrUnknownParent,
			})
		}
	}

	if len(n.NodalTypes) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".nodal_types",
			Message: fmt.Sprintf("node %q has no nodal types", n.Name),
			Code:    ErrEmptyNodalTypes,
		})
	}

	seen := make(map[string]bool, len(n.NodalTypes))
	for j, l := range n.NodalTypes {
		if seen[l] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.nodal_types[%d]", field, j),
				Message: fmt.Sprintf("duplicate nodal type %q", l),
				Code:    ErrDuplicateLabel,
			})
		}
		seen[l] = true

		if n.Exogenous() {
			if _, err := strconv.Atoi(l); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.nodal_types[%d]", field, j),
					Message: fmt.Sprintf("exogenous label %q is not an integer", l),
					Code:    ErrExogenousLabel,
				})
			}
		}
	}

	if n.Exogenous() {
		return errs
	}
	if n.Table == nil {
		return append(errs, ValidationError{
			Field:   field + ".table",
			Message: fmt.Sprintf("endogenous node %q requires an outcome table", n.Name),
			Code:    ErrMissingTable,
		})
	}
	return append(errs, validateTable(field, n)...)
}

func validateTable(nodeField string, n ir.Node) []ValidationError {
	var errs []ValidationError
	t := n.Table
	field := nodeField + ".table"

	cols := make(map[string]bool, len(t.Columns))
	for c, col := range t.Columns {
		if len(col) != len(n.Parents) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.columns[%d]", field, c),
				Message: fmt.Sprintf("column has %d values, node has %d parents", len(col), len(n.Parents)),
				Code:    ErrColumnWidth,
			})
			continue
		}
		key := fmt.Sprint(col)
		if cols[key] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.columns[%d]", field, c),
				Message: fmt.Sprintf("duplicate parent-value combination %v", col),
				Code:    ErrDuplicateColumn,
			})
		}
		cols[key] = true
	}

	for r, row := range t.Rows {
		if len(row.Values) != len(t.Columns) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.rows[%d]", field, r),
				Message: fmt.Sprintf("row %q has %d values, table has %d columns", row.Label, len(row.Values), len(t.Columns)),
				Code:    ErrRowWidth,
			})
		}
	}

	for j, l := range n.NodalTypes {
		if _, ok := t.Row(l); !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.nodal_types[%d]", nodeField, j),
				Message: fmt.Sprintf("nodal type %q of node %q has no table row", l, n.Name),
				Code:    ErrMissingRow,
			})
		}
	}

	return errs
}
