package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/causalcore/internal/engine"
	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/testutil"
)

// createTestStore creates a new store in a temp dir with sequential run IDs.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, append([]Option{WithRunIDs(testutil.NewSequentialRunIDs())}, opts...)...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// realize returns m's outcome matrix under do.
func realize(t *testing.T, m *ir.Model, do ir.Intervention) *ir.IntMatrix {
	t.Helper()
	out, err := engine.New(engine.WithWorkers(1)).RealizeMatrix(context.Background(), m, do)
	if err != nil {
		t.Fatalf("RealizeMatrix() failed: %v", err)
	}
	return out
}
