package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/causalcore/internal/engine"
	"github.com/roach88/causalcore/internal/queryir"
	"github.com/roach88/causalcore/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	ModelHash string // optional - runs of one model only
	Verify    bool   // recompute runs and compare with the stored matrices
}

// RunVerification is the replay outcome of one run.
type RunVerification struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Replayable    bool   `json:"replayable"`
	Deterministic bool   `json:"deterministic"`
}

// RunsResult lists stored runs.
type RunsResult struct {
	Runs             []store.Run       `json:"runs"`
	Total            int               `json:"total"`
	Verified         []RunVerification `json:"verified,omitempty"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs <db>",
		Short: "List stored runs and verify they replay",
		Long: `List the runs stored in a SQLite database in seq order.

With --verify every realize and query run is recomputed from its stored
model and intervention, and the result is compared with the stored matrix.
Type-probability runs do not store their draws and are listed as not
replayable.

Exit codes:
  0 - All replayed runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  causalcore runs ./runs.db
  causalcore runs ./runs.db --verify --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ModelHash, "model", "", "list runs of this model hash only")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute runs and compare with stored results")

	return cmd
}

func runRuns(opts *RunsOptions, dbPath string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	ctx := commandContext(cmd)

	// store.Open creates missing databases; listing one is a usage error.
	if _, err := os.Stat(dbPath); err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", dbPath)})
	}
	st, err := opts.openStore(dbPath)
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, opts.ModelHash)
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}

	result := RunsResult{
		Runs:             runs,
		Total:            len(runs),
		AllDeterministic: true,
	}

	if opts.Verify {
		eng := opts.newEngine(cmd)
		for _, run := range runs {
			v, err := verifyRun(ctx, st, eng, run)
			if err != nil {
				return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("verify run %s: %v", run.ID, err)})
			}
			if v.Replayable && !v.Deterministic {
				result.AllDeterministic = false
			}
			result.Verified = append(result.Verified, v)
			formatter.VerboseLog("Verified %s run %s: deterministic=%v", v.Kind, v.ID, v.Deterministic)
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if err := outputRunsText(formatter, result); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// verifyRun recomputes a stored run from its inputs.
func verifyRun(ctx context.Context, st *store.Store, eng *engine.Engine, run store.Run) (RunVerification, error) {
	v := RunVerification{ID: run.ID, Kind: string(run.Kind)}
	if run.Kind == store.KindTypeProb {
		return v, nil
	}
	v.Replayable = true

	_, m, do, err := st.RunInputs(ctx, run.ID)
	if err != nil {
		return v, err
	}
	stored, err := st.ReadMatrix(ctx, run.ID)
	if err != nil {
		return v, err
	}

	var replayed []int
	switch run.Kind {
	case store.KindRealize:
		out, err := eng.RealizeMatrix(ctx, m, do)
		if err != nil {
			return v, err
		}
		replayed = out.Data()
	case store.KindQuery:
		q, err := queryir.ParseQuery(run.Query)
		if err != nil {
			return v, err
		}
		replayed = make([]int, run.Cols)
		if err := eng.Query(ctx, m, q, do, replayed); err != nil {
			return v, err
		}
	}

	v.Deterministic = slices.Equal(replayed, stored.Data())
	return v, nil
}

// outputRunsText prints one line per run and the verification summary.
func outputRunsText(formatter *OutputFormatter, result RunsResult) error {
	w := formatter.Writer
	if result.Total == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	verified := make(map[string]RunVerification, len(result.Verified))
	for _, v := range result.Verified {
		verified[v.ID] = v
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "seq\tid\tkind\tmodel\tdo\tquery\tdims\tverified")
	for _, r := range result.Runs {
		status := "-"
		if v, ok := verified[r.ID]; ok {
			switch {
			case !v.Replayable:
				status = "n/a"
			case v.Deterministic:
				status = "✓"
			default:
				status = "✗"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%dx%d\t%s\n",
			r.Seq, r.ID, r.Kind, shortHash(r.ModelHash), r.Intervention, r.Query, r.Rows, r.Cols, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d run(s)\n", result.Total)
	if len(result.Verified) > 0 {
		if result.AllDeterministic {
			fmt.Fprintln(w, "✓ All replayable runs are deterministic")
		} else {
			fmt.Fprintln(w, "✗ Determinism verification failed")
		}
	}
	return nil
}

// shortHash abbreviates a model hash for tables.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
