package engine

import (
	"context"
	"time"

	"github.com/roach88/causalcore/internal/ir"
)

// TypeProb returns, for each causal type t, the product over parameters p of
// P[p,t]·params[p] + 1 − P[p,t]: the product of the parameters the type
// includes. The result is not normalized.
func TypeProb(params []float64, inc *ir.Incidence) ([]float64, error) {
	if len(params) != inc.Params {
		return nil, NewLengthError("parameters", len(params), inc.Params)
	}
	out := make([]float64, inc.Types)
	typeProbInto(out, params, inc)
	return out, nil
}

func typeProbInto(out, params []float64, inc *ir.Incidence) {
	for t := range out {
		col := inc.Column(t)
		prob := 1.0
		for p, on := range col {
			pv := float64(on)
			prob *= (pv*params[p] + 1) - pv
		}
		out[t] = prob
	}
}

// TypeProbBatch applies TypeProb to every row of draws using a default engine.
func TypeProbBatch(ctx context.Context, draws *ir.FloatMatrix, inc *ir.Incidence) (*ir.FloatMatrix, error) {
	return New(WithPlanCache(0)).TypeProbBatch(ctx, draws, inc)
}

// TypeProbBatch applies TypeProb to every row of draws, one output row per
// draw in the same order. Rows are spread across the worker pool.
func (e *Engine) TypeProbBatch(ctx context.Context, draws *ir.FloatMatrix, inc *ir.Incidence) (*ir.FloatMatrix, error) {
	if draws.Cols() != inc.Params {
		return nil, NewLengthError("draw columns", draws.Cols(), inc.Params)
	}
	start := time.Now()
	out := ir.NewFloatMatrix(draws.Rows(), inc.Types)

	// One draw is a full pass over the incidence matrix, so a single row is
	// already a worthwhile unit.
	err := runChunks(ctx, draws.Rows(), 1, e.workers, func(lo, hi int) error {
		for r := lo; r < hi; r++ {
			typeProbInto(out.Row(r), draws.Row(r), inc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.metrics.RecordTypeProbDraws(draws.Rows())
	e.logger.Debug("type probabilities computed",
		"draws", draws.Rows(),
		"parameters", inc.Params,
		"causal_types", inc.Types,
		"elapsed", time.Since(start),
	)
	return out, nil
}

// BuildIncidence builds m's incidence matrix with a default engine.
func BuildIncidence(m *ir.Model) (*ir.Incidence, error) {
	return New(WithPlanCache(0)).BuildIncidence(m)
}

// BuildIncidence builds the parameter-by-type incidence matrix of m: one
// parameter per (node, nodal type) in m.Parameters() order, set for the
// causal types that assign that nodal type to that node. The engine's
// causal-type limit applies.
func (e *Engine) BuildIncidence(m *ir.Model) (*ir.Incidence, error) {
	space, err := e.TypeSpace(m)
	if err != nil {
		return nil, err
	}
	params := len(m.Parameters())
	if _, ok := mulChecked(params, space.Size()); !ok {
		return nil, newError(ErrCodeCapacityExceeded, "", "incidence matrix of %d parameters × %d causal types overflows int", params, space.Size())
	}
	inc := ir.NewIncidence(params, space.Size())

	offset := 0
	for j := range m.Nodes {
		each, k := space.Each(j), space.Cardinality(j)
		for t := 0; t < space.Size(); t++ {
			inc.Set(offset+(t/each)%k, t, true)
		}
		offset += k
	}
	return inc, nil
}
