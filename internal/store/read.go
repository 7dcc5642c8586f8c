package store

import (
	"context"
	"fmt"

	"github.com/roach88/causalcore/internal/ir"
)

const runColumns = `id, seq, model_hash, kind, intervention, query, n_rows, n_cols, engine_version`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var kind string
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.ModelHash,
		&kind,
		&run.Intervention,
		&run.Query,
		&run.Rows,
		&run.Cols,
		&run.EngineVersion,
	)
	if err != nil {
		return Run{}, err
	}
	run.Kind = RunKind(kind)
	return run, nil
}

// ReadRun returns the metadata of one run.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id))
	if err != nil {
		return Run{}, fmt.Errorf("read run %q: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs in seq order. An empty modelHash lists every run.
//
// Returns empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, modelHash string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if modelHash != "" {
		query += ` WHERE model_hash = ?`
		args = append(args, modelHash)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// readBlob returns a run with its blob, checking the kind.
func (s *Store) readBlob(ctx context.Context, id string, kinds ...RunKind) (Run, []byte, error) {
	var blob []byte
	var run Run
	var kind string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, model_hash, kind, intervention, query, n_rows, n_cols, engine_version, blob
		FROM runs
		WHERE id = ?
	`, id).Scan(
		&run.ID,
		&run.Seq,
		&run.ModelHash,
		&kind,
		&run.Intervention,
		&run.Query,
		&run.Rows,
		&run.Cols,
		&run.EngineVersion,
		&blob,
	)
	if err != nil {
		return Run{}, nil, fmt.Errorf("read run %q: %w", id, err)
	}
	run.Kind = RunKind(kind)
	for _, k := range kinds {
		if run.Kind == k {
			return run, blob, nil
		}
	}
	return Run{}, nil, fmt.Errorf("run %q is a %s run, want %v", id, run.Kind, kinds)
}

// ReadMatrix decodes the integer matrix of a realize or query run.
func (s *Store) ReadMatrix(ctx context.Context, id string) (*ir.IntMatrix, error) {
	run, blob, err := s.readBlob(ctx, id, KindRealize, KindQuery)
	if err != nil {
		return nil, err
	}
	values, err := decodeInts(blob, run.Rows*run.Cols)
	if err != nil {
		return nil, fmt.Errorf("read matrix %q: %w", id, err)
	}
	out := ir.NewIntMatrix(run.Rows, run.Cols)
	copy(out.Data(), values)
	return out, nil
}

// ReadFloatMatrix decodes the probability matrix of a type_prob run.
func (s *Store) ReadFloatMatrix(ctx context.Context, id string) (*ir.FloatMatrix, error) {
	run, blob, err := s.readBlob(ctx, id, KindTypeProb)
	if err != nil {
		return nil, err
	}
	values, err := decodeFloats(blob, run.Rows*run.Cols)
	if err != nil {
		return nil, fmt.Errorf("read float matrix %q: %w", id, err)
	}
	out := ir.NewFloatMatrix(run.Rows, run.Cols)
	copy(out.Data(), values)
	return out, nil
}

// ReadModel returns the stored model with the given hash.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadModel(ctx context.Context, hash string) (*ir.Model, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM models WHERE hash = ?`, hash).Scan(&doc)
	if err != nil {
		return nil, fmt.Errorf("read model %q: %w", hash, err)
	}
	return unmarshalModel(doc)
}

// RunInputs returns what is needed to recompute a run: its model and
// intervention. Replaying those through the engine must reproduce the
// stored matrix.
func (s *Store) RunInputs(ctx context.Context, id string) (Run, *ir.Model, ir.Intervention, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return Run{}, nil, nil, err
	}
	m, err := s.ReadModel(ctx, run.ModelHash)
	if err != nil {
		return Run{}, nil, nil, err
	}
	do, err := ir.ParseIntervention(run.Intervention)
	if err != nil {
		return Run{}, nil, nil, fmt.Errorf("run %q intervention: %w", id, err)
	}
	return run, m, do, nil
}

// countOutcomes returns the number of outcome rows stored for a run.
func (s *Store) countOutcomes(ctx context.Context, id string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outcomes WHERE run_id = ?`, id).Scan(&n)
	return n, err
}
