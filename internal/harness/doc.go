// Package harness provides conformance testing for causal models.
//
// A scenario names a CUE model, an optional intervention, query and
// parameter draw, and the results it expects. Run realizes the model with
// the engine, stores every result in a fresh in-memory run store, checks
// the SQL backend against the engine for portable queries, and evaluates
// the expectations and assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: xy_do_x1
//	description: "Y follows its nodal type once X is fixed"
//	model: ../models/xy.cue     # relative to the scenario file
//	workers: 2                  # optional, default 1
//	do: {X: 1}                  # optional intervention
//	query: "Y == 1"             # optional, clauses separated by ';'
//	params: [0.5, 0.5, 0.25, 0.25, 0.25, 0.25]  # optional, one draw
//	expect:
//	  causal_types: 8
//	  outcomes: {Y: [0, 0, 1, 1, 0, 0, 1, 1]}
//	  query: [0, 0, 1, 1, 0, 0, 1, 1]
//	  type_prob: [0.125, ...]
//	  error: LOOKUP_MISS        # expect the run to fail with this code
//	assertions:
//	  - type: node_constant
//	    node: X
//	    value: 1
//	  - type: query_count
//	    count: 4
//
// Unknown fields are rejected so typos fail loudly.
//
// # Golden Files
//
// RunWithGolden compares a canonical JSON snapshot of the result against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
