package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/causalcore/internal/ir"
)

// MaxBinaryParents bounds the parent count for generated binary nodal types.
// A node with k binary parents has 2^(2^k) standard nodal types.
const MaxBinaryParents = 4

// CompileModel parses a CUE value into a Model.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the model struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: { nodes: { X: {} } }`)
//	m, err := CompileModel(v.LookupPath(cue.ParsePath("model")))
//
// Node order is CUE field declaration order. Nodes without nodal types get
// the standard binary ones (see BinaryNodalTypes). The result is not
// validated; call Validate before using it.
func CompileModel(v cue.Value) (*ir.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Model{Name: "model"}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		m.Name = sels[len(sels)-1].String()
	}
	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, &CompileError{Field: "name", Message: "name must be a string", Pos: nameVal.Pos()}
		}
		m.Name = name
	}

	nodesVal := v.LookupPath(cue.ParsePath("nodes"))
	if !nodesVal.Exists() {
		return nil, &CompileError{
			Field:   "nodes",
			Message: "nodes is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := nodesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		node, err := compileNode(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		m.Nodes = append(m.Nodes, node)
	}

	return m, nil
}

// compileNode parses one entry of the nodes struct.
func compileNode(name string, v cue.Value) (ir.Node, error) {
	node := ir.Node{Name: name}
	field := "nodes." + name

	var err error
	if pv := v.LookupPath(cue.ParsePath("parents")); pv.Exists() {
		node.Parents, err = stringList(pv, field+".parents")
		if err != nil {
			return node, err
		}
	}
	if nv := v.LookupPath(cue.ParsePath("nodal_types")); nv.Exists() {
		node.NodalTypes, err = labelList(nv, field+".nodal_types")
		if err != nil {
			return node, err
		}
	}
	if tv := v.LookupPath(cue.ParsePath("table")); tv.Exists() {
		node.Table, err = compileTable(tv, field+".table")
		if err != nil {
			return node, err
		}
	}

	switch {
	case node.Exogenous() && node.NodalTypes == nil:
		node.NodalTypes = []string{"0", "1"}
	case !node.Exogenous() && node.Table == nil:
		if len(node.Parents) > MaxBinaryParents {
			return node, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("cannot generate binary nodal types for %d parents (max %d); declare a table", len(node.Parents), MaxBinaryParents),
				Pos:     v.Pos(),
			}
		}
		labels, table := BinaryNodalTypes(len(node.Parents))
		if node.NodalTypes == nil {
			node.NodalTypes = labels
			node.Table = table
		} else if restricted, ok := restrictBinaryTable(table, node.NodalTypes); ok {
			node.Table = restricted
		}
	}

	return node, nil
}

// compileTable parses {columns: [[...]], rows: {label: [...]}}.
// Row order is field declaration order.
func compileTable(v cue.Value, field string) (*ir.OutcomeTable, error) {
	table := &ir.OutcomeTable{}

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{Field: field + ".columns", Message: "columns is required", Pos: v.Pos()}
	}
	colIter, err := colsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for colIter.Next() {
		col, err := intList(colIter.Value(), fmt.Sprintf("%s.columns[%s]", field, colIter.Selector()))
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, col)
	}

	rowsVal := v.LookupPath(cue.ParsePath("rows"))
	if !rowsVal.Exists() {
		return nil, &CompileError{Field: field + ".rows", Message: "rows is required", Pos: v.Pos()}
	}
	rowIter, err := rowsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for rowIter.Next() {
		label := rowIter.Selector().Unquoted()
		values, err := intList(rowIter.Value(), field+".rows."+label)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, ir.TableRow{Label: label, Values: values})
	}

	return table, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// labelList accepts strings or integers; integers become their decimal text.
func labelList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of labels", Pos: v.Pos()}
	}
	out := []string{}
	for iter.Next() {
		ev := iter.Value()
		switch ev.IncompleteKind() {
		case cue.StringKind:
			s, err := ev.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			out = append(out, s)
		case cue.IntKind:
			n, err := intValue(ev, field)
			if err != nil {
				return nil, err
			}
			out = append(out, strconv.Itoa(n))
		default:
			return nil, &CompileError{Field: field, Message: "labels must be strings or integers", Pos: ev.Pos()}
		}
	}
	return out, nil
}

func intList(v cue.Value, field string) ([]int, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of integers", Pos: v.Pos()}
	}
	out := []int{}
	for iter.Next() {
		n, err := intValue(iter.Value(), field)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func intValue(v cue.Value, field string) (int, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
	case cue.FloatKind, cue.NumberKind:
		return 0, &CompileError{
			Field:   field,
			Message: "float values are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected int, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	n, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// BinaryNodalTypes returns every binary function of k binary parents.
//
// Columns enumerate parent-value combinations with the first parent varying
// fastest. A label is the digit string of the outputs in column order, so
// with one parent "01" means output 0 when the parent is 0 and 1 when it is 1.
// Labels are ordered with the first column's output varying fastest.
func BinaryNodalTypes(k int) ([]string, *ir.OutcomeTable) {
	ncols := 1 << k
	nfuncs := 1 << ncols

	table := &ir.OutcomeTable{Columns: make([][]int, ncols)}
	for c := range ncols {
		col := make([]int, k)
		for j := range k {
			col[j] = (c >> j) & 1
		}
		table.Columns[c] = col
	}

	labels := make([]string, nfuncs)
	table.Rows = make([]ir.TableRow, nfuncs)
	for u := range nfuncs {
		digits := make([]byte, ncols)
		values := make([]int, ncols)
		for c := range ncols {
			values[c] = (u >> c) & 1
			digits[c] = byte('0' + values[c])
		}
		labels[u] = string(digits)
		table.Rows[u] = ir.TableRow{Label: labels[u], Values: values}
	}
	return labels, table
}

// restrictBinaryTable keeps the rows of a generated binary table named by
// labels, in label order. It reports false when any label is not a standard
// binary label for the table's width, leaving the node without a table.
func restrictBinaryTable(full *ir.OutcomeTable, labels []string) (*ir.OutcomeTable, bool) {
	out := &ir.OutcomeTable{Columns: full.Columns}
	for _, l := range labels {
		row, ok := full.Row(l)
		if !ok {
			return nil, false
		}
		out.Rows = append(out.Rows, row)
	}
	return out, true
}

// CompileModelFile compiles CUE source (a file's bytes) and extracts the
// top-level "model" struct.
func CompileModelFile(filename string, src []byte) (*ir.Model, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileModelRoot(v)
}

// LoadModel loads a model from a single .cue file or from a directory holding
// one CUE package.
func LoadModel(path string) (*ir.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return CompileModelFile(path, src)
	}

	files, err := filepath.Glob(filepath.Join(path, "*.cue"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", path)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", path)
	}
	if err := instances[0].Err; err != nil {
		return nil, formatCUEError(err)
	}
	v := cuecontext.New().BuildInstance(instances[0])
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileModelRoot(v)
}

func compileModelRoot(v cue.Value) (*ir.Model, error) {
	mv := v.LookupPath(cue.ParsePath("model"))
	if !mv.Exists() {
		return nil, &CompileError{Field: "model", Message: "no top-level model found", Pos: v.Pos()}
	}
	return CompileModel(mv)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
