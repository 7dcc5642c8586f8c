package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/causalcore/internal/ir"
)

// Operator is a binary clause operator.
type Operator string

// Supported operators. Comparisons yield 0 or 1; & and | are bitwise.
const (
	OpAdd    Operator = "+"
	OpSub    Operator = "-"
	OpGT     Operator = ">"
	OpGE     Operator = ">="
	OpLT     Operator = "<"
	OpLE     Operator = "<="
	OpEQ     Operator = "=="
	OpNE     Operator = "!="
	OpBitAnd Operator = "&"
	OpAnd    Operator = "&&"
	OpBitOr  Operator = "|"
	OpOr     Operator = "||"
)

// Operators lists every supported operator. Two-character operators come
// before their one-character prefixes so a left-to-right scan matches the
// longest operator first.
var Operators = []Operator{
	OpGE, OpLE, OpEQ, OpNE, OpAnd, OpOr,
	OpAdd, OpSub, OpGT, OpLT, OpBitAnd, OpBitOr,
}

// Valid reports whether op is a supported operator.
func (op Operator) Valid() bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Comparison reports whether op yields a 0/1 truth value.
func (op Operator) Comparison() bool {
	switch op {
	case OpGT, OpGE, OpLT, OpLE, OpEQ, OpNE:
		return true
	}
	return false
}

// Clause is one binary sub-expression.
//
// Left and Right are raw operand tokens: a node name, an integer literal, or
// a bracketed term "Y[X=1,Z=0]".
type Clause struct {
	Left  string   `json:"left"`
	Op    Operator `json:"op"`
	Right string   `json:"right"`
}

// String returns "Left Op Right".
func (c Clause) String() string {
	return c.Left + " " + string(c.Op) + " " + c.Right
}

// Query is an ordered list of clauses, AND-combined left to right.
type Query struct {
	Clauses []Clause `json:"clauses"`
}

// NewQuery builds a query from clauses.
func NewQuery(clauses ...Clause) Query {
	return Query{Clauses: clauses}
}

// String joins clauses with "; ", the form ParseQuery accepts.
func (q Query) String() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

// Term is a parsed operand token.
//
// Name is the node name or literal text. Do is the bracketed intervention;
// it is nil for plain tokens, which resolve under the query's base
// intervention.
type Term struct {
	Name string
	Do   ir.Intervention
}

// Bracketed reports whether the term carries its own intervention.
func (t Term) Bracketed() bool {
	return t.Do != nil
}

// Key returns the canonical token: "Y" or "Y[X=1,Z=0]".
func (t Term) Key() string {
	if !t.Bracketed() {
		return t.Name
	}
	return fmt.Sprintf("%s[%s]", t.Name, t.Do.Key())
}

// Terms returns the distinct operand terms of q in first-appearance order.
// Bracketed terms that differ only in spacing or assignment order collapse
// to one term.
func (q Query) Terms() ([]Term, error) {
	var terms []Term
	seen := make(map[string]bool)
	for i, c := range q.Clauses {
		for _, tok := range []string{c.Left, c.Right} {
			t, err := ParseTerm(tok)
			if err != nil {
				return nil, fmt.Errorf("clause %d: %w", i+1, err)
			}
			if seen[t.Key()] {
				continue
			}
			seen[t.Key()] = true
			terms = append(terms, t)
		}
	}
	return terms, nil
}
