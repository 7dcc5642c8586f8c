package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/causalcore/internal/ir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Clauses  []string
	Do       string
	Database string // optional run store
}

// QueryResult holds a query's per-causal-type result.
type QueryResult struct {
	Model        string `json:"model"`
	Query        string `json:"query"`
	Intervention string `json:"intervention,omitempty"`
	Result       []int  `json:"result"`
	Count        int    `json:"count"` // causal types with a non-zero result
	CausalTypes  int    `json:"causal_types"`
	RunID        string `json:"run_id,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <model>",
		Short: "Evaluate a query over every causal type",
		Long: `Evaluate clauses over the realized outcomes of every causal type.

Each --clause is "left OP right" where operands are node names, bracketed
interventions such as Y[X=1], or integers. Clauses are combined with AND.
Plain node operands are realized under --do; a bracketed operand applies
its assignments on top of --do.

Examples:
  causalcore query ./models/xy.cue --clause "Y == 1"
  causalcore query ./models/xy.cue --clause "Y[X=1] > Y[X=0]"
  causalcore query ./models/xy.cue --clause "X == 1" --clause "Y == 0" --db ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Clauses, "clause", nil, "query clause (repeatable)")
	_ = cmd.MarkFlagRequired("clause")
	cmd.Flags().StringVar(&opts.Do, "do", "", "base intervention, e.g. X=1,Z=0")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store the query result in this SQLite database")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	ctx := commandContext(cmd)

	m, err := LoadValidModel(path)
	if err != nil {
		return formatter.Fail(err)
	}
	q, err := parseClauses(opts.Clauses)
	if err != nil {
		return formatter.Fail(err)
	}
	do, err := parseDo(opts.Do)
	if err != nil {
		return formatter.Fail(err)
	}

	eng := opts.newEngine(cmd)
	space, err := eng.TypeSpace(m)
	if err != nil {
		return formatter.Fail(err)
	}
	values := make([]int, space.Size())
	if err := eng.Query(ctx, m, q, do, values); err != nil {
		return formatter.Fail(err)
	}

	result := QueryResult{
		Model:        m.Name,
		Query:        q.String(),
		Intervention: ir.InterventionKey(do),
		Result:       values,
		CausalTypes:  len(values),
	}
	for _, v := range values {
		if v != 0 {
			result.Count++
		}
	}

	if opts.Database != "" {
		st, err := opts.openStore(opts.Database)
		if err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
		}
		defer st.Close()
		run, err := st.WriteQueryResult(ctx, m, q, do, values)
		if err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
		}
		result.RunID = run.ID
		formatter.VerboseLog("Stored query run %s (seq %d)", run.ID, run.Seq)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %s holds for %d of %d causal type(s)\n\n", result.Query, result.Count, result.CausalTypes)
	fmt.Fprintf(w, "  %s\n", formatInts(result.Result))
	if result.RunID != "" {
		fmt.Fprintf(w, "\nStored run %s in %s\n", result.RunID, opts.Database)
	}
	return nil
}
