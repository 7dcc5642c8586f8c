package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/causalcore/internal/ir"
	"github.com/roach88/causalcore/internal/queryir"
)

// RunKind identifies what a run stores.
type RunKind string

const (
	KindRealize  RunKind = "realize"   // node × causal-type outcomes
	KindQuery    RunKind = "query"     // one row of clause results
	KindTypeProb RunKind = "type_prob" // draw × causal-type probabilities
)

// Run is the metadata of one stored result.
type Run struct {
	ID            string  `json:"id"`
	Seq           int64   `json:"seq"`
	ModelHash     string  `json:"model_hash"`
	Kind          RunKind `json:"kind"`
	Intervention  string  `json:"intervention,omitempty"`
	Query         string  `json:"query,omitempty"`
	Rows          int     `json:"rows"`
	Cols          int     `json:"cols"`
	EngineVersion string  `json:"engine_version"`
}

// WriteModel stores m under its content hash and returns the hash.
// Uses ON CONFLICT(hash) DO NOTHING - writing the same model twice is a no-op.
func (s *Store) WriteModel(ctx context.Context, m *ir.Model, causalTypes int) (string, error) {
	return s.writeModel(ctx, s.db, m, causalTypes)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) writeModel(ctx context.Context, db execer, m *ir.Model, causalTypes int) (string, error) {
	hash, err := ir.ModelHash(m)
	if err != nil {
		return "", fmt.Errorf("write model: %w", err)
	}
	doc, err := marshalModel(m)
	if err != nil {
		return "", fmt.Errorf("write model: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO models (hash, name, document, ir_version, node_count, causal_types)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, m.Name, doc, ir.IRVersion, len(m.Nodes), causalTypes)
	if err != nil {
		return "", fmt.Errorf("write model: %w", err)
	}
	return hash, nil
}

// WriteRealization stores a realized outcome matrix: the run record with
// the compressed matrix, and one outcomes row per (node, causal type).
//
// out must have one row per model node in declaration order.
func (s *Store) WriteRealization(ctx context.Context, m *ir.Model, do ir.Intervention, out *ir.IntMatrix) (run Run, err error) {
	if out.Rows() != len(m.Nodes) {
		return Run{}, fmt.Errorf("write realization: matrix has %d rows, model has %d nodes", out.Rows(), len(m.Nodes))
	}
	blob := encodeInts(out.Data())
	defer func() { s.metrics.RecordStoreWrite(string(KindRealize), len(blob), err) }()

	run = Run{
		Kind:         KindRealize,
		Intervention: ir.InterventionKey(do),
		Rows:         out.Rows(),
		Cols:         out.Cols(),
	}
	err = s.writeRun(ctx, m, &run, blob, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO outcomes (run_id, node, node_index, causal_type, value)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare outcomes: %w", err)
		}
		defer stmt.Close()

		for j, n := range m.Nodes {
			for i, v := range out.Row(j) {
				if _, err := stmt.ExecContext(ctx, run.ID, n.Name, j, i, v); err != nil {
					return fmt.Errorf("insert outcome %s[%d]: %w", n.Name, i, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, fmt.Errorf("write realization: %w", err)
	}
	return run, nil
}

// WriteQueryResult stores one query's per-causal-type result.
func (s *Store) WriteQueryResult(ctx context.Context, m *ir.Model, q queryir.Query, do ir.Intervention, result []int) (run Run, err error) {
	blob := encodeInts(result)
	defer func() { s.metrics.RecordStoreWrite(string(KindQuery), len(blob), err) }()

	run = Run{
		Kind:         KindQuery,
		Intervention: ir.InterventionKey(do),
		Query:        q.String(),
		Rows:         1,
		Cols:         len(result),
	}
	if err = s.writeRun(ctx, m, &run, blob, nil); err != nil {
		return Run{}, fmt.Errorf("write query result: %w", err)
	}
	return run, nil
}

// WriteTypeProbs stores a batch of type probabilities, one row per draw.
func (s *Store) WriteTypeProbs(ctx context.Context, m *ir.Model, probs *ir.FloatMatrix) (run Run, err error) {
	blob := encodeFloats(probs.Data())
	defer func() { s.metrics.RecordStoreWrite(string(KindTypeProb), len(blob), err) }()

	run = Run{
		Kind: KindTypeProb,
		Rows: probs.Rows(),
		Cols: probs.Cols(),
	}
	if err = s.writeRun(ctx, m, &run, blob, nil); err != nil {
		return Run{}, fmt.Errorf("write type probs: %w", err)
	}
	return run, nil
}

// writeRun stamps run with an ID, seq and model hash and inserts it together
// with its model in one transaction. extra runs inside the same transaction.
func (s *Store) writeRun(ctx context.Context, m *ir.Model, run *Run, blob []byte, extra func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Every run kind has one column per causal type.
	hash, err := s.writeModel(ctx, tx, m, run.Cols)
	if err != nil {
		return err
	}

	// The transaction holds the write lock (_txlock=immediate), so MAX(seq)
	// is stable until commit even with other handles on the same file.
	var last int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&last); err != nil {
		return fmt.Errorf("read last seq: %w", err)
	}

	run.ID = s.ids.Generate()
	run.Seq = s.clock.NextAfter(last)
	run.ModelHash = hash
	run.EngineVersion = ir.EngineVersion

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, model_hash, kind, intervention, query, n_rows, n_cols, blob, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.ModelHash,
		string(run.Kind),
		run.Intervention,
		run.Query,
		run.Rows,
		run.Cols,
		blob,
		run.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if extra != nil {
		if err := extra(tx); err != nil {
			return err
		}
	}
	return tx.Commit()
}
