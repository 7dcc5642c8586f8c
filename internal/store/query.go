package store

import (
	"context"
	"fmt"

	"github.com/roach88/causalcore/internal/queryir"
	"github.com/roach88/causalcore/internal/querysql"
)

// QueryRun evaluates q against the stored outcomes of a realize run, in SQL.
// The result has one entry per causal type, in causal-type order, and equals
// evaluating q on the realized matrix in memory.
func (s *Store) QueryRun(ctx context.Context, runID string, q queryir.Query) ([]int, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Kind != KindRealize {
		return nil, fmt.Errorf("query run %q: %s runs have no outcomes", runID, run.Kind)
	}
	nodes, err := s.runNodes(ctx, runID)
	if err != nil {
		return nil, err
	}

	sqlText, params, err := querysql.NewSQLCompiler(runID).Compile(q, nodes)
	if err != nil {
		return nil, fmt.Errorf("query run %q: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query run %q: %w", runID, err)
	}
	defer rows.Close()

	result := make([]int, 0, run.Cols)
	for rows.Next() {
		var causalType, value int
		if err := rows.Scan(&causalType, &value); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if causalType != len(result) {
			return nil, fmt.Errorf("query run %q: missing outcomes for causal type %d", runID, len(result))
		}
		result = append(result, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	if len(result) != run.Cols {
		return nil, fmt.Errorf("query run %q: got %d causal types, run has %d", runID, len(result), run.Cols)
	}
	return result, nil
}

// runNodes returns the node names of a realize run in node_index order.
func (s *Store) runNodes(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT node_index, node
		FROM outcomes
		WHERE run_id = ?
		ORDER BY node_index ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []string
	for rows.Next() {
		var idx int
		var name string
		if err := rows.Scan(&idx, &name); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if idx != len(nodes) {
			return nil, fmt.Errorf("run %q: node index %d out of sequence", runID, idx)
		}
		nodes = append(nodes, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}
