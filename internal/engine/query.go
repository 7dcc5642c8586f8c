package engine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/queryir"
)

// PairOperation applies op element-wise. Comparisons yield 0 or 1; & and |
// are bitwise, as are && and || (inputs are expected to be 0/1 indicators).
func PairOperation(a, b []int, op queryir.Operator) ([]int, error) {
	if len(a) != len(b) {
		return nil, NewLengthError("operands", len(b), len(a))
	}
	f, ok := pairFuncs[op]
	if !ok {
		return nil, newError(ErrCodeUnknownOperator, "", "unknown operator %q", string(op))
	}
	out := make([]int, len(a))
	for i := range a {
		out[i] = f(a[i], b[i])
	}
	return out, nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

var pairFuncs = map[queryir.Operator]func(x, y int) int{
	queryir.OpAdd:    func(x, y int) int { return x + y },
	queryir.OpSub:    func(x, y int) int { return x - y },
	queryir.OpGT:     func(x, y int) int { return b2i(x > y) },
	queryir.OpGE:     func(x, y int) int { return b2i(x >= y) },
	queryir.OpLT:     func(x, y int) int { return b2i(x < y) },
	queryir.OpLE:     func(x, y int) int { return b2i(x <= y) },
	queryir.OpEQ:     func(x, y int) int { return b2i(x == y) },
	queryir.OpNE:     func(x, y int) int { return b2i(x != y) },
	queryir.OpBitAnd: func(x, y int) int { return x & y },
	queryir.OpAnd:    func(x, y int) int { return x & y },
	queryir.OpBitOr:  func(x, y int) int { return x | y },
	queryir.OpOr:     func(x, y int) int { return x | y },
}

// Evaluate computes q over named vectors of length n and returns the
// AND-combination of its clauses.
//
// An operand resolves to vectors[token], then to the vector stored under
// its canonical term key (so "Y[ Z=0 , X=1 ]" finds "Y[X=1,Z=0]"), then to
// an integer literal broadcast to length n.
func Evaluate(vectors map[string][]int, n int, q queryir.Query) ([]int, error) {
	if len(q.Clauses) == 0 {
		return nil, newError(ErrCodeBadQuery, "", "query has no clauses")
	}
	for name, v := range vectors {
		if len(v) != n {
			return nil, &RuntimeError{
				Code:    ErrCodeLengthMismatch,
				Node:    name,
				Message: "vector length " + strconv.Itoa(len(v)) + ", want " + strconv.Itoa(n),
			}
		}
	}

	var acc []int
	for i, c := range q.Clauses {
		left, err := resolveOperand(vectors, n, c.Left)
		if err != nil {
			return nil, err
		}
		right, err := resolveOperand(vectors, n, c.Right)
		if err != nil {
			return nil, err
		}
		res, err := PairOperation(left, right, c.Op)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			acc = res
			continue
		}
		for k := range acc {
			acc[k] &= res[k]
		}
	}
	return acc, nil
}

func resolveOperand(vectors map[string][]int, n int, tok string) ([]int, error) {
	tok = strings.TrimSpace(tok)
	if v, ok := vectors[tok]; ok {
		return v, nil
	}
	if t, err := queryir.ParseTerm(tok); err == nil {
		if v, ok := vectors[t.Key()]; ok {
			return v, nil
		}
	}
	lit, err := strconv.Atoi(tok)
	if err != nil {
		return nil, newError(ErrCodeBadOperand, "", "operand %q is neither a known node nor an integer", tok)
	}
	out := make([]int, n)
	for i := range out {
		out[i] = lit
	}
	return out, nil
}

// Query realizes every node operand of q and writes the clause result for
// each causal type into dst.
//
// Plain node operands are realized under base. A bracketed operand
// "Y[X=1]" is realized under base with the bracket's assignments applied on
// top. The model is realized once per distinct intervention, and only the
// operand nodes and their ancestors are computed.
func (e *Engine) Query(ctx context.Context, m *ir.Model, q queryir.Query, base ir.Intervention, dst []int) (err error) {
	start := time.Now()
	defer func() {
		e.metrics.RecordQuery(err)
	}()

	if len(q.Clauses) == 0 {
		return newError(ErrCodeBadQuery, "", "query has no clauses")
	}
	p, err := e.planFor(m)
	if err != nil {
		return err
	}
	n := p.space.Size()
	if len(dst) != n {
		return NewTypeCountError("query result", len(dst), n)
	}
	if err := p.checkIntervention(base); err != nil {
		return err
	}

	terms, err := q.Terms()
	if err != nil {
		return newError(ErrCodeBadOperand, "", "%v", err)
	}

	// Group node terms by effective intervention, in first-appearance order.
	type group struct {
		do    ir.Intervention
		terms []queryir.Term
	}
	var groups []*group
	byKey := make(map[string]*group)
	for _, t := range terms {
		if _, ok := p.index[t.Name]; !ok {
			if t.Bracketed() {
				return newError(ErrCodeUnknownNode, t.Name, "intervention operand names unknown node")
			}
			continue // literal or bad operand, resolved by Evaluate
		}
		do := base
		if t.Bracketed() {
			do = base.Clone()
			for name, v := range t.Do {
				do[name] = v
			}
			if err := p.checkIntervention(do); err != nil {
				return err
			}
		}
		key := ir.InterventionKey(do)
		g, ok := byKey[key]
		if !ok {
			g = &group{do: do}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.terms = append(g.terms, t)
	}

	vectors := make(map[string][]int, len(terms))
	var scratch *ir.IntMatrix
	if len(groups) > 0 {
		scratch = ir.NewIntMatrix(len(p.nodes), n)
	}
	for _, g := range groups {
		targets := make([]int, len(g.terms))
		for i, t := range g.terms {
			targets[i] = p.index[t.Name]
		}
		if err := e.realize(ctx, p, g.do, scratch, p.ancestors(targets)); err != nil {
			return err
		}
		for i, t := range g.terms {
			vectors[t.Key()] = append([]int(nil), scratch.Row(targets[i])...)
		}
	}

	res, err := Evaluate(vectors, n, q)
	if err != nil {
		return err
	}
	copy(dst, res)

	e.logger.Info("query evaluated",
		"model_hash", p.hash,
		"query", q.String(),
		"realizations", len(groups),
		"causal_types", n,
		"elapsed", time.Since(start),
	)
	return nil
}
