package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/causalcore/internal/ir"
)

// Snapshot captures a scenario result for golden comparison.
// It serializes through canonical JSON so files are byte-stable.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonical converts the snapshot to IR values for canonical JSON.
// Canonical JSON has no floats, so probabilities are written as strings
// with 10 significant digits.
func (s *Snapshot) toCanonical() ir.IRObject {
	r := s.Result
	outcomes := ir.IRObject{}
	for _, name := range r.Nodes {
		if row := r.Row(name); row != nil {
			outcomes[name] = ir.IntArray(row)
		}
	}

	obj := ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"pass":          ir.IRBool(r.Pass),
		"causal_types":  ir.IRInt(r.CausalTypes),
		"nodes":         ir.StringArray(r.Nodes),
		"outcomes":      outcomes,
		"run_ids":       ir.StringArray(r.RunIDs),
	}
	if r.Query != nil {
		obj["query"] = ir.IntArray(r.Query)
	}
	if r.TypeProb != nil {
		probs := make(ir.IRArray, len(r.TypeProb))
		for i, p := range r.TypeProb {
			probs[i] = ir.IRString(strconv.FormatFloat(p, 'g', 10, 64))
		}
		obj["type_prob"] = probs
	}
	if r.ErrorCode != "" {
		obj["error_code"] = ir.IRString(r.ErrorCode)
	}
	if len(r.Errors) > 0 {
		obj["errors"] = ir.StringArray(r.Errors)
	}
	return obj
}

// SnapshotJSON returns the canonical JSON snapshot of a result, the bytes
// stored in golden files.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: scenarioName, Result: result}
	return ir.MarshalCanonical(snapshot.toCanonical())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
