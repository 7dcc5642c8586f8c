package testutil

import (
	"fmt"
	"sync"
)

// SequentialRunIDs returns "run-0001", "run-0002", ... so stored runs have
// predictable identifiers in golden output.
//
// Thread-safety: SequentialRunIDs is safe for concurrent use.
type SequentialRunIDs struct {
	mu sync.Mutex
	n  int
}

// NewSequentialRunIDs creates a generator whose first ID is "run-0001".
func NewSequentialRunIDs() *SequentialRunIDs {
	return &SequentialRunIDs{}
}

// Generate returns the next run ID.
func (g *SequentialRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("run-%04d", g.n)
}
