package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/causalcore/internal/ir"
)

// TypeProbOptions holds flags for the typeprob command.
type TypeProbOptions struct {
	*RootOptions
	Params   string // one comma-separated draw
	Draws    string // YAML file with one draw per row
	Database string // optional run store
}

// TypeProbResult holds type probabilities for a batch of draws.
type TypeProbResult struct {
	Model         string      `json:"model"`
	Parameters    []string    `json:"parameters"`
	CausalTypes   int         `json:"causal_types"`
	Probabilities [][]float64 `json:"probabilities"` // one row per draw
	RunID         string      `json:"run_id,omitempty"`
}

// NewTypeProbCommand creates the typeprob command.
func NewTypeProbCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TypeProbOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "typeprob <model>",
		Short: "Compute causal-type probabilities from parameter draws",
		Long: `Compute, for each parameter draw, the probability of every causal type:
the product of the parameters of the nodal types it assigns.

Parameters are ordered by node, then by nodal type, in declaration order.
Run "causalcore compile" to see the count. Results are not normalized.

Examples:
  causalcore typeprob ./models/xy.cue --params 0.5,0.5,0.25,0.25,0.25,0.25
  causalcore typeprob ./models/xy.cue --draws ./draws.yaml --db ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypeProb(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Params, "params", "", "one parameter draw, comma separated")
	cmd.Flags().StringVar(&opts.Draws, "draws", "", "YAML file with one parameter draw per row")
	cmd.MarkFlagsMutuallyExclusive("params", "draws")
	cmd.MarkFlagsOneRequired("params", "draws")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store the probabilities in this SQLite database")

	return cmd
}

func runTypeProb(opts *TypeProbOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	ctx := commandContext(cmd)

	m, err := LoadValidModel(path)
	if err != nil {
		return formatter.Fail(err)
	}
	draws, err := readDraws(opts)
	if err != nil {
		return formatter.Fail(err)
	}

	eng := opts.newEngine(cmd)
	inc, err := eng.BuildIncidence(m)
	if err != nil {
		return formatter.Fail(err)
	}
	probs, err := eng.TypeProbBatch(ctx, draws, inc)
	if err != nil {
		return formatter.Fail(err)
	}

	params := m.Parameters()
	result := TypeProbResult{
		Model:         m.Name,
		Parameters:    make([]string, len(params)),
		CausalTypes:   inc.Types,
		Probabilities: probs.ToRows(),
	}
	for i, p := range params {
		result.Parameters[i] = p.String()
	}

	if opts.Database != "" {
		st, err := opts.openStore(opts.Database)
		if err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
		}
		defer st.Close()
		run, err := st.WriteTypeProbs(ctx, m, probs)
		if err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
		}
		result.RunID = run.ID
		formatter.VerboseLog("Stored type_prob run %s (seq %d)", run.ID, run.Seq)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %d draw(s) × %d causal type(s)\n\n", len(result.Probabilities), result.CausalTypes)
	for d, row := range result.Probabilities {
		sum := 0.0
		parts := make([]string, len(row))
		for i, p := range row {
			sum += p
			parts[i] = strconv.FormatFloat(p, 'g', 6, 64)
		}
		fmt.Fprintf(w, "  draw %d (sum %s): %s\n", d, strconv.FormatFloat(sum, 'g', 6, 64), strings.Join(parts, " "))
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "\nStored run %s in %s\n", result.RunID, opts.Database)
	}
	return nil
}

// readDraws returns the draws named by --params or --draws.
func readDraws(opts *TypeProbOptions) (*ir.FloatMatrix, error) {
	if opts.Draws != "" {
		return loadDraws(opts.Draws)
	}
	params, err := parseParams(opts.Params)
	if err != nil {
		return nil, err
	}
	return ir.FloatMatrixFromRows([][]float64{params})
}
