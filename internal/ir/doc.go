// Package ir provides the intermediate representation of structural causal
// models for causalcore.
//
// This package contains type definitions and identity helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// model description the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Node order is declaration order and is significant (mixed-radix order)
//   - Exogenous nodes have no parents; their labels are integer outputs
//   - Model identity is a content hash over canonical JSON, never a pointer
//   - Matrices are dense and row-major; callers own the backing storage
package ir
