// Package store provides SQLite-backed storage for causal-model runs.
//
// The store keeps:
//   - Models: canonical model documents keyed by content hash
//   - Runs: one record per realization, query result or type-probability
//     batch, with the result matrix as a snappy-compressed blob
//   - Outcomes: realized values per (run, node, causal type), so stored
//     realizations can be queried with SQL (see querysql)
//
// # Critical Patterns
//
// Logical time:
//   - Runs are ordered by seq INTEGER from a logical clock, NEVER timestamps
//   - Each write takes MAX(seq)+1 inside an IMMEDIATE transaction, so
//     several handles or processes on one file never issue the same seq
//
// Deterministic results:
//   - All listing queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Outcome queries use ORDER BY causal_type
//
// Content identity:
//   - Model hashes come from ir.ModelHash (canonical JSON + SHA-256)
//   - Writing the same model twice is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
