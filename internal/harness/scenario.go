package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/causalcore/internal/compiler"
	"github.com/roach88/causalcore/internal/queryir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" validate:"required"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" validate:"required"`

	// Model is the path to a CUE model file or directory.
	// LoadScenario resolves it relative to the scenario file.
	Model string `yaml:"model" validate:"required"`

	// Workers is the engine worker count. Zero means one worker.
	Workers int `yaml:"workers,omitempty" validate:"gte=0"`

	// Do is the intervention applied to the realization and query.
	Do map[string]int `yaml:"do,omitempty"`

	// Query is an optional query in ParseQuery syntax.
	Query string `yaml:"query,omitempty"`

	// Params is an optional parameter draw, one value per (node, nodal type)
	// in declaration order.
	Params []float64 `yaml:"params,omitempty"`

	// Expect holds exact expected results.
	Expect Expect `yaml:"expect"`

	// Assertions are additional checks on the result.
	Assertions []Assertion `yaml:"assertions,omitempty" validate:"dive"`
}

// Expect lists exact expected results. Empty fields are not checked.
type Expect struct {
	CausalTypes int              `yaml:"causal_types,omitempty" validate:"gte=0"`
	Outcomes    map[string][]int `yaml:"outcomes,omitempty"`
	Query       []int            `yaml:"query,omitempty"`
	TypeProb    []float64        `yaml:"type_prob,omitempty"`

	// Error is the runtime error code the run must fail with.
	Error string `yaml:"error,omitempty"`
}

// Assertion checks one property of the result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "node_constant": every causal type gives Node the same Value
	// - "outcome_at": Node has Value under causal type CausalType
	// - "query_count": the query holds for exactly Count causal types
	// - "type_prob_sum": type probabilities sum to Sum within Tolerance
	Type string `yaml:"type" validate:"required,oneof=node_constant outcome_at query_count type_prob_sum"`

	Node       string  `yaml:"node,omitempty"`
	CausalType int     `yaml:"causal_type,omitempty" validate:"gte=0"`
	Value      int     `yaml:"value,omitempty"`
	Count      int     `yaml:"count,omitempty" validate:"gte=0"`
	Sum        float64 `yaml:"sum,omitempty"`
	Tolerance  float64 `yaml:"tolerance,omitempty" validate:"gte=0"`
}

// Assertion type constants.
const (
	AssertNodeConstant = "node_constant"
	AssertOutcomeAt    = "outcome_at"
	AssertQueryCount   = "query_count"
	AssertTypeProbSum  = "type_prob_sum"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative model path is resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}
	if _, err := os.Stat(scenario.Model); err != nil {
		return nil, fmt.Errorf("invalid scenario: model not found: %s", scenario.Model)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks struct constraints and the cross-field rules the
// tags cannot express.
func validateScenario(s *Scenario) error {
	if errs := compiler.ValidateStruct(s); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Field + ": " + e.Message
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	if s.Query != "" {
		if _, err := queryir.ParseQuery(s.Query); err != nil {
			return fmt.Errorf("query: %w", err)
		}
	}
	if len(s.Expect.Query) > 0 && s.Query == "" {
		return fmt.Errorf("expect.query requires a query")
	}
	if len(s.Expect.TypeProb) > 0 && len(s.Params) == 0 {
		return fmt.Errorf("expect.type_prob requires params")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, s); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, s *Scenario) error {
	switch a.Type {
	case AssertNodeConstant, AssertOutcomeAt:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for %s", index, a.Type)
		}
	case AssertQueryCount:
		if s.Query == "" {
			return fmt.Errorf("assertions[%d]: query_count requires a query", index)
		}
	case AssertTypeProbSum:
		if len(s.Params) == 0 {
			return fmt.Errorf("assertions[%d]: type_prob_sum requires params", index)
		}
	}
	return nil
}
