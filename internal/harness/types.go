package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// ErrorCode is the runtime error code when the run failed as expected.
	ErrorCode string `json:"error_code,omitempty"`

	// CausalTypes is N, the size of the model's causal-type space.
	CausalTypes int `json:"causal_types"`

	// Nodes lists node names in declaration order; Outcomes has one row per
	// node in the same order.
	Nodes    []string `json:"nodes"`
	Outcomes [][]int  `json:"outcomes"`

	// Query is the per-causal-type query result, if the scenario has a query.
	Query []int `json:"query,omitempty"`

	// TypeProb holds the type probabilities of the scenario's draw.
	TypeProb []float64 `json:"type_prob,omitempty"`

	// RunIDs are the IDs of the runs written to the scenario's store.
	RunIDs []string `json:"run_ids"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		RunIDs: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Row returns the outcome row of a node, or nil if the node is unknown or
// the model was not realized.
func (r *Result) Row(node string) []int {
	for i, n := range r.Nodes {
		if n == node && i < len(r.Outcomes) {
			return r.Outcomes[i]
		}
	}
	return nil
}
