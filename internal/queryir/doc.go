// Package queryir provides the query intermediate representation for
// causalcore's outcome queries.
//
// A query is an ordered list of binary clauses such as "Y == 1" or
// "Y[X=1] > Y[X=0]". Clauses are AND-combined left to right. Operands are
// raw tokens: a token names a node vector if the name is known and is
// otherwise read as an integer literal broadcast across all causal types.
// Resolution happens at evaluation time, not at parse time.
//
// ARCHITECTURE:
//
// QueryIR sits between textual queries and the evaluation backends:
//
//	[query text] → [Query IR] → [engine.Evaluate]   (in-memory vectors)
//	                          → [querysql.Compile]  (stored outcomes)
//
// PORTABLE FRAGMENT:
//
// The portable fragment is what both backends implement: plain node names,
// integer literals, and every operator. Bracketed intervention operands
// ("Y[X=1]") need a fresh realization per intervention, which only the
// engine can produce. Validate reports them as non-portable.
package queryir
