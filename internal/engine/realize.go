package engine

import (
	"context"
	"time"

	"github.com/roach88/causalcore/internal/ir"
)

// Realize computes every node's value under every causal type and writes
// them into dst, one row per node in declaration order.
//
// Exogenous rows are the decoded nodal-type labels. Intervened rows hold the
// intervention value and are never recomputed. Remaining nodes are computed
// in topological order from their already-realized parent rows.
//
// dst must be len(m.Nodes) × N. On error the contents of dst are unspecified.
func (e *Engine) Realize(ctx context.Context, m *ir.Model, do ir.Intervention, dst Matrix) (err error) {
	start := time.Now()
	n := 0
	defer func() {
		e.metrics.RecordRealization(n, time.Since(start), err)
	}()

	p, err := e.planFor(m)
	if err != nil {
		return err
	}
	n = p.space.Size()

	if err := p.checkSink(dst); err != nil {
		return err
	}
	if err := p.checkIntervention(do); err != nil {
		return err
	}
	if err := e.realize(ctx, p, do, dst, nil); err != nil {
		return err
	}

	e.logger.Info("model realized",
		"model_hash", p.hash,
		"causal_types", n,
		"nodes", len(p.nodes),
		"intervention", ir.InterventionKey(do),
		"workers", e.workers,
		"elapsed", time.Since(start),
	)
	return nil
}

// RealizeMatrix allocates the outcome matrix and realizes m into it.
func (e *Engine) RealizeMatrix(ctx context.Context, m *ir.Model, do ir.Intervention) (*ir.IntMatrix, error) {
	ts, err := e.TypeSpace(m)
	if err != nil {
		return nil, err
	}
	out := ir.NewIntMatrix(len(m.Nodes), ts.Size())
	if err := e.Realize(ctx, m, do, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *plan) checkSink(dst Matrix) error {
	if dst.Rows() != len(p.nodes) {
		return newError(ErrCodeTypeCountMismatch, "", "matrix has %d rows, model has %d nodes", dst.Rows(), len(p.nodes))
	}
	if dst.Cols() != p.space.Size() {
		return NewTypeCountError("matrix columns", dst.Cols(), p.space.Size())
	}
	for j := range p.nodes {
		if got := len(dst.Row(j)); got != p.space.Size() {
			return NewTypeCountError("row "+p.names[j], got, p.space.Size())
		}
	}
	return nil
}

func (p *plan) checkIntervention(do ir.Intervention) error {
	for _, name := range do.Names() {
		if _, ok := p.index[name]; !ok {
			return newError(ErrCodeUnknownNode, name, "intervention names unknown node")
		}
	}
	return nil
}

// realize fills dst. When only is non-nil, nodes outside it are skipped; the
// caller guarantees only is closed under ancestry.
func (e *Engine) realize(ctx context.Context, p *plan, do ir.Intervention, dst Matrix, only []bool) error {
	n := p.space.Size()

	// Exogenous and intervened rows depend on nothing.
	for j := range p.nodes {
		if only != nil && !only[j] {
			continue
		}
		np := &p.nodes[j]
		row := dst.Row(j)
		if v, ok := do[np.name]; ok {
			for i := range row {
				row[i] = v
			}
			continue
		}
		if np.exogenous {
			each, k := p.space.Each(j), p.space.Cardinality(j)
			for i := range row {
				row[i] = np.values[(i/each)%k]
			}
		}
	}

	for _, j := range p.order {
		if only != nil && !only[j] {
			continue
		}
		np := &p.nodes[j]
		if np.exogenous {
			continue
		}
		if _, ok := do[np.name]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := np.missingRowError(); err != nil {
			return err
		}

		parentRows := make([][]int, len(np.parents))
		for k, pi := range np.parents {
			parentRows[k] = dst.Row(pi)
		}
		row := dst.Row(j)
		each, card := p.space.Each(j), p.space.Cardinality(j)

		err := runChunks(ctx, n, minChunk, e.workers, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				key, bad := np.keyFor(parentRows, i)
				col := -1
				if bad < 0 {
					col = np.cells.lookup(key)
				}
				if col < 0 {
					return p.lookupMiss(np, parentRows, i)
				}
				pos := (i / each) % card
				row[i] = np.outputs[pos*np.ncols+col]
			}
			return nil
		})
		if err != nil {
			return err
		}
		e.logger.Debug("node realized",
			"node", np.name,
			"parents", len(np.parents),
			"causal_types", n,
		)
	}
	return nil
}

// ancestors marks the given nodes and all their ancestors.
func (p *plan) ancestors(targets []int) []bool {
	mark := make([]bool, len(p.nodes))
	stack := append([]int(nil), targets...)
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if mark[j] {
			continue
		}
		mark[j] = true
		stack = append(stack, p.nodes[j].parents...)
	}
	return mark
}
