package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/causalcore/internal/compiler"
	"github.com/roach88/causalcore/internal/engine"
	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/queryir"
	"github.com/roach88/causalcore/internal/store"
	"github.com/roach88/causalcore/internal/testutil"
)

// Harness runs one scenario against the engine and a run store.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	model  *ir.Model
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// sequential run IDs so results are reproducible.
//
// Execution flow:
// 1. Load, compile and validate the model
// 2. Realize the model under the scenario's intervention
// 3. Evaluate the query, cross-checking the SQL backend when portable
// 4. Compute type probabilities for the parameter draw
// 5. Compare expectations and evaluate assertions
//
// Run returns an error only when the scenario cannot be executed at all.
// Engine errors are reported through the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	m, err := compiler.LoadModel(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	if errs := compiler.Validate(m); len(errs) > 0 {
		return nil, fmt.Errorf("invalid model: %w", errs[0])
	}

	st, err := store.Open(":memory:", store.WithRunIDs(testutil.NewSequentialRunIDs()))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	workers := max(scenario.Workers, 1)
	h := &Harness{
		store:  st,
		engine: engine.New(engine.WithWorkers(workers), engine.WithLogger(logger)),
		model:  m,
		logger: logger,
	}

	result := NewResult()
	result.Nodes = m.NodeNames()

	runErr := h.execute(ctx, scenario, result)
	h.checkError(scenario, runErr, result)
	if runErr != nil {
		return result, nil
	}

	h.checkExpect(scenario, result)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs the engine stages the scenario asks for and records their
// outputs. It stops at the first error.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) error {
	do := ir.Intervention(scenario.Do)

	out, err := h.engine.RealizeMatrix(ctx, h.model, do)
	if err != nil {
		return err
	}
	result.CausalTypes = out.Cols()
	result.Outcomes = out.ToRows()

	run, err := h.store.WriteRealization(ctx, h.model, do, out)
	if err != nil {
		return fmt.Errorf("store realization: %w", err)
	}
	result.RunIDs = append(result.RunIDs, run.ID)

	if scenario.Query != "" {
		if err := h.query(ctx, scenario.Query, do, run.ID, result); err != nil {
			return err
		}
	}

	if len(scenario.Params) > 0 {
		if err := h.typeProb(ctx, scenario.Params, result); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) query(ctx context.Context, text string, do ir.Intervention, realizeRun string, result *Result) error {
	q, err := queryir.ParseQuery(text)
	if err != nil {
		return err
	}
	values := make([]int, result.CausalTypes)
	if err := h.engine.Query(ctx, h.model, q, do, values); err != nil {
		return err
	}
	result.Query = values

	run, err := h.store.WriteQueryResult(ctx, h.model, q, do, values)
	if err != nil {
		return fmt.Errorf("store query result: %w", err)
	}
	result.RunIDs = append(result.RunIDs, run.ID)

	portable, err := portableQuery(q)
	if err != nil || !portable {
		return err
	}
	fromSQL, err := h.store.QueryRun(ctx, realizeRun, q)
	if err != nil {
		return fmt.Errorf("sql query: %w", err)
	}
	if !slices.Equal(fromSQL, values) {
		result.AddError(fmt.Sprintf("sql backend disagrees with engine: sql=%v engine=%v", fromSQL, values))
	}
	return nil
}

// portableQuery reports whether every operand of q can be answered from a
// single stored realization.
func portableQuery(q queryir.Query) (bool, error) {
	terms, err := q.Terms()
	if err != nil {
		return false, err
	}
	for _, t := range terms {
		if t.Bracketed() {
			return false, nil
		}
	}
	return true, nil
}

func (h *Harness) typeProb(ctx context.Context, params []float64, result *Result) error {
	inc, err := h.engine.BuildIncidence(h.model)
	if err != nil {
		return err
	}
	draws, err := ir.FloatMatrixFromRows([][]float64{params})
	if err != nil {
		return err
	}
	probs, err := h.engine.TypeProbBatch(ctx, draws, inc)
	if err != nil {
		return err
	}
	result.TypeProb = probs.Row(0)

	run, err := h.store.WriteTypeProbs(ctx, h.model, probs)
	if err != nil {
		return fmt.Errorf("store type probs: %w", err)
	}
	result.RunIDs = append(result.RunIDs, run.ID)
	return nil
}

// checkError compares the run error against the expected error code.
func (h *Harness) checkError(scenario *Scenario, err error, result *Result) {
	want := scenario.Expect.Error
	var re *engine.RuntimeError
	switch {
	case err == nil && want == "":
	case err == nil:
		result.AddError(fmt.Sprintf("expected error %s, run succeeded", want))
	case want == "":
		result.AddError(fmt.Sprintf("unexpected error: %v", err))
	case !errors.As(err, &re):
		result.AddError(fmt.Sprintf("expected error %s, got %v", want, err))
	case string(re.Code) != want:
		result.AddError(fmt.Sprintf("expected error %s, got %s: %s", want, re.Code, re.Message))
	default:
		result.ErrorCode = string(re.Code)
		h.logger.Debug("expected error", "code", re.Code, "message", re.Message)
	}
}

// checkExpect compares exact expectations against the result.
func (h *Harness) checkExpect(scenario *Scenario, result *Result) {
	exp := scenario.Expect

	if exp.CausalTypes != 0 && exp.CausalTypes != result.CausalTypes {
		result.AddError(fmt.Sprintf("causal_types: expected %d, got %d", exp.CausalTypes, result.CausalTypes))
	}

	for _, node := range sortedKeys(exp.Outcomes) {
		row := result.Row(node)
		if row == nil {
			result.AddError(fmt.Sprintf("outcomes: unknown node %q", node))
			continue
		}
		if !slices.Equal(row, exp.Outcomes[node]) {
			result.AddError(fmt.Sprintf("outcomes[%s]: expected %v, got %v", node, exp.Outcomes[node], row))
		}
	}

	if exp.Query != nil && !slices.Equal(exp.Query, result.Query) {
		result.AddError(fmt.Sprintf("query: expected %v, got %v", exp.Query, result.Query))
	}

	if exp.TypeProb != nil {
		if len(exp.TypeProb) != len(result.TypeProb) {
			result.AddError(fmt.Sprintf("type_prob: expected %d values, got %d", len(exp.TypeProb), len(result.TypeProb)))
			return
		}
		for i, want := range exp.TypeProb {
			if !approxEqual(want, result.TypeProb[i], defaultTolerance) {
				result.AddError(fmt.Sprintf("type_prob[%d]: expected %g, got %g", i, want, result.TypeProb[i]))
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
