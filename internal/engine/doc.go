// Package engine realizes structural causal models over their full
// causal-type space.
//
// A causal type assigns one nodal type to every node. With k_j nodal types
// for node j there are N = Π k_j causal types, enumerated in mixed radix with
// the first declared node varying fastest.
//
// ARCHITECTURE:
//
// Plan compilation:
// A model is compiled once into a plan: the type space, the topological
// order and, per endogenous node, dense lookup tables mapping parent values
// to a composite integer key and the key to a table column. Plans are cached
// by model content hash and shared read-only by all workers.
//
// Realization:
// 1. Exogenous rows are decoded from the type index
// 2. Intervened rows are filled with the intervention value
// 3. Remaining nodes are computed in topological order, one node at a time;
// the node's columns are split into chunks across the worker pool, and the
// pool is drained before the next node starts
//
// Queries realize only the operand nodes and their ancestors, once per
// distinct intervention, then combine clause results with bitwise AND.
//
// Type probabilities multiply, per causal type, the parameters the type
// includes, using a parameter-by-type incidence matrix.
//
// CRITICAL PATTERNS:
//
// Determinism:
// Every result is identical for any worker count and with or without the
// plan cache. Workers write disjoint column ranges; nothing is shared
// mutably.
//
// Errors:
// Failures are returned as *RuntimeError with a Code, never logged at
// Error level and never retried.
package engine
