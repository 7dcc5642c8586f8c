package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/causalcore/internal/ir"
)

// ParseError reports malformed query text.
type ParseError struct {
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Message)
}

// ParseTerm parses an operand token. "Y[X=1,Z=0]" yields Term{Name: "Y",
// Do: {X: 1, Z: 0}}; any other non-empty token yields Term{Name: token}.
func ParseTerm(tok string) (Term, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return Term{}, &ParseError{Input: tok, Message: "empty operand"}
	}

	open := strings.IndexByte(tok, '[')
	if open < 0 {
		if strings.ContainsAny(tok, "]") {
			return Term{}, &ParseError{Input: tok, Message: "unbalanced ']'"}
		}
		return Term{Name: tok}, nil
	}
	if !strings.HasSuffix(tok, "]") || strings.Count(tok, "[") != 1 || strings.Count(tok, "]") != 1 {
		return Term{}, &ParseError{Input: tok, Message: "intervention operand must look like NODE[X=1,...]"}
	}

	name := strings.TrimSpace(tok[:open])
	if name == "" {
		return Term{}, &ParseError{Input: tok, Message: "missing node name before '['"}
	}
	do, err := ir.ParseIntervention(tok[open+1 : len(tok)-1])
	if err != nil {
		return Term{}, &ParseError{Input: tok, Message: err.Error()}
	}
	if len(do) == 0 {
		return Term{}, &ParseError{Input: tok, Message: "empty intervention"}
	}
	return Term{Name: name, Do: do}, nil
}

// ParseClause parses "LEFT OP RIGHT".
//
// The operator is the first operator found outside brackets after the first
// character of the left operand, longest match first, so "Y - -1" is
// {Y, -, -1} and "-1 < Y" is {-1, <, Y}.
func ParseClause(s string) (Clause, error) {
	text := strings.TrimSpace(s)
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
			continue
		case ']':
			depth--
			continue
		}
		if depth != 0 || i == 0 {
			continue
		}
		op, ok := operatorAt(text, i)
		if !ok {
			if text[i] == '=' || text[i] == '!' {
				return Clause{}, &ParseError{Input: text, Message: fmt.Sprintf("unknown operator at offset %d", i)}
			}
			continue
		}
		left := strings.TrimSpace(text[:i])
		right := strings.TrimSpace(text[i+len(op):])
		if left == "" || right == "" {
			return Clause{}, &ParseError{Input: text, Message: "clause needs two operands"}
		}
		if _, err := ParseTerm(left); err != nil {
			return Clause{}, err
		}
		if _, err := ParseTerm(right); err != nil {
			return Clause{}, err
		}
		return Clause{Left: left, Op: op, Right: right}, nil
	}
	return Clause{}, &ParseError{Input: text, Message: "no operator found"}
}

// operatorAt returns the operator starting at text[i], longest match first.
func operatorAt(text string, i int) (Operator, bool) {
	for _, op := range Operators {
		if strings.HasPrefix(text[i:], string(op)) {
			return op, true
		}
	}
	return "", false
}

// ParseQuery parses clauses separated by ';' or newlines.
// Blank clauses are skipped; a query with no clauses is an error.
func ParseQuery(s string) (Query, error) {
	var q Query
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' }) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseClause(part)
		if err != nil {
			return Query{}, err
		}
		q.Clauses = append(q.Clauses, c)
	}
	if len(q.Clauses) == 0 {
		return Query{}, &ParseError{Input: s, Message: "empty query"}
	}
	return q, nil
}
