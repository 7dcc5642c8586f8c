// Package querysql compiles clause queries to parameterized SQL over stored
// outcomes.
package querysql

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/causalcore/internal/queryir"
)

// sqlOperators maps clause operators to SQLite. Comparisons already yield
// 0/1 in SQLite; && and || act on 0/1 indicators, so their bitwise forms
// give the same result.
var sqlOperators = map[queryir.Operator]string{
	queryir.OpAdd:    "+",
	queryir.OpSub:    "-",
	queryir.OpGT:     ">",
	queryir.OpGE:     ">=",
	queryir.OpLT:     "<",
	queryir.OpLE:     "<=",
	queryir.OpEQ:     "=",
	queryir.OpNE:     "!=",
	queryir.OpBitAnd: "&",
	queryir.OpAnd:    "&",
	queryir.OpBitOr:  "|",
	queryir.OpOr:     "|",
}

// SQLCompiler compiles queries against the outcomes table
// (run_id, node, node_index, causal_type, value).
//
// CRITICAL: every query ends with ORDER BY causal_type so rows line up with
// causal-type indexes.
// CRITICAL: node names and literals are always parameters, never
// interpolated. Column aliases are derived from node positions only.
type SQLCompiler struct {
	// RunID restricts the query to one stored run. Empty means no filter.
	RunID string
}

// NewSQLCompiler creates a compiler for the given run.
func NewSQLCompiler(runID string) *SQLCompiler {
	return &SQLCompiler{RunID: runID}
}

// Compile compiles q for a model with the given node names, without a run
// filter.
func Compile(q queryir.Query, nodes []string) (string, []any, error) {
	return NewSQLCompiler("").Compile(q, nodes)
}

// Compile converts q to one SELECT returning (causal_type, result) rows.
//
// Outcomes are pivoted to one column per referenced node; each clause
// becomes an SQL expression and clauses are combined with &. Operands that
// carry their own intervention cannot be answered from a single stored run
// and are rejected.
func (c *SQLCompiler) Compile(q queryir.Query, nodes []string) (string, []any, error) {
	if len(q.Clauses) == 0 {
		return "", nil, fmt.Errorf("cannot compile empty query")
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	var exprParams []any
	referenced := make(map[int]bool)
	operand := func(tok string) (string, error) {
		t, err := queryir.ParseTerm(tok)
		if err != nil {
			return "", err
		}
		if t.Bracketed() {
			return "", fmt.Errorf("operand %q: intervention operands are not portable to SQL", tok)
		}
		if i, ok := index[t.Name]; ok {
			referenced[i] = true
			return columnAlias(i), nil
		}
		lit, err := strconv.ParseInt(t.Name, 10, 64)
		if err != nil {
			return "", fmt.Errorf("operand %q is neither a node nor an integer", tok)
		}
		exprParams = append(exprParams, lit)
		return "?", nil
	}

	parts := make([]string, len(q.Clauses))
	for i, cl := range q.Clauses {
		op, ok := sqlOperators[cl.Op]
		if !ok {
			return "", nil, fmt.Errorf("clause %d: unknown operator %q", i+1, string(cl.Op))
		}
		left, err := operand(cl.Left)
		if err != nil {
			return "", nil, fmt.Errorf("clause %d: %w", i+1, err)
		}
		right, err := operand(cl.Right)
		if err != nil {
			return "", nil, fmt.Errorf("clause %d: %w", i+1, err)
		}
		parts[i] = fmt.Sprintf("(%s %s %s)", left, op, right)
	}

	pivotSQL, pivotParams := c.compilePivot(nodes, referenced)

	sql := fmt.Sprintf("SELECT causal_type, %s AS result FROM (%s) ORDER BY causal_type ASC",
		strings.Join(parts, " & "),
		pivotSQL)

	// Parameters follow placeholder order in the text: expression first.
	params := append(exprParams, pivotParams...)
	return sql, params, nil
}

// compilePivot builds the inner query with one column per referenced node.
func (c *SQLCompiler) compilePivot(nodes []string, referenced map[int]bool) (string, []any) {
	cols := make([]int, 0, len(referenced))
	for i := range referenced {
		cols = append(cols, i)
	}
	slices.Sort(cols)

	var params []any
	selectList := []string{"causal_type"}
	for _, i := range cols {
		selectList = append(selectList,
			fmt.Sprintf("MAX(CASE WHEN node = ? THEN value END) AS %s", columnAlias(i)))
		params = append(params, nodes[i])
	}

	where := ""
	if c.RunID != "" {
		where = " WHERE run_id = ?"
		params = append(params, c.RunID)
	}

	return fmt.Sprintf("SELECT %s FROM outcomes%s GROUP BY causal_type",
		strings.Join(selectList, ", "), where), params
}

func columnAlias(i int) string {
	return "n" + strconv.Itoa(i)
}
