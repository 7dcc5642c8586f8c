package harness

import (
	"fmt"
	"math"
	"strings"
)

// defaultTolerance is used for float comparisons when an assertion sets none.
const defaultTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Row      []int  // Outcome row under test, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Row != nil {
		fmt.Fprintf(&buf, "  Row: %v\n", e.Row)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertNodeConstant:
		return assertNodeConstant(result, a)
	case AssertOutcomeAt:
		return assertOutcomeAt(result, a)
	case AssertQueryCount:
		return assertQueryCount(result, a)
	case AssertTypeProbSum:
		return assertTypeProbSum(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertNodeConstant checks that every causal type gives the node a.Value.
func assertNodeConstant(result *Result, a Assertion) error {
	row := result.Row(a.Node)
	if row == nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("node %s", a.Node), Actual: "no such node"}
	}
	for i, v := range row {
		if v != a.Value {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s == %d for every causal type", a.Node, a.Value),
				Actual:   fmt.Sprintf("%s == %d at causal type %d", a.Node, v, i),
				Row:      row,
			}
		}
	}
	return nil
}

// assertOutcomeAt checks one cell of the outcome matrix.
func assertOutcomeAt(result *Result, a Assertion) error {
	row := result.Row(a.Node)
	if row == nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("node %s", a.Node), Actual: "no such node"}
	}
	if a.CausalType >= len(row) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("causal type %d", a.CausalType),
			Actual:   fmt.Sprintf("only %d causal types", len(row)),
		}
	}
	if got := row[a.CausalType]; got != a.Value {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s == %d at causal type %d", a.Node, a.Value, a.CausalType),
			Actual:   fmt.Sprintf("%d", got),
			Row:      row,
		}
	}
	return nil
}

// assertQueryCount checks how many causal types satisfy the query.
func assertQueryCount(result *Result, a Assertion) error {
	count := 0
	for _, v := range result.Query {
		if v != 0 {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d causal types", a.Count),
			Actual:   fmt.Sprintf("%d causal types", count),
			Row:      result.Query,
		}
	}
	return nil
}

// assertTypeProbSum checks the total probability of the draw.
func assertTypeProbSum(result *Result, a Assertion) error {
	tol := a.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}
	sum := 0.0
	for _, p := range result.TypeProb {
		sum += p
	}
	if !approxEqual(sum, a.Sum, tol) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("sum %g ± %g", a.Sum, tol),
			Actual:   fmt.Sprintf("sum %g", sum),
		}
	}
	return nil
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
