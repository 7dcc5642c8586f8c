package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/causalcore/internal/engine"
)

// TypesOptions holds flags for the types command.
type TypesOptions struct {
	*RootOptions
	Limit int // print at most this many causal types (0 = all)
}

// TypesResult lists the causal types of a model.
type TypesResult struct {
	Space       string     `json:"space"`
	CausalTypes int        `json:"causal_types"`
	Nodes       []string   `json:"nodes"`
	Types       [][]string `json:"types"` // one row of nodal-type labels per causal type
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TypesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "types <model>",
		Short: "List the causal types of a model",
		Long: `List every causal type of a model: one nodal-type label per node.

Causal types are numbered with the first node varying fastest.

Examples:
  causalcore types ./models/xy.cue
  causalcore types ./models/chain --limit 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "print at most this many causal types (0 = all)")

	return cmd
}

func runTypes(opts *TypesOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	m, err := LoadValidModel(path)
	if err != nil {
		return formatter.Fail(err)
	}
	space, err := opts.newEngine(cmd).TypeSpace(m)
	if err != nil {
		return formatter.Fail(err)
	}
	labels, err := engine.MakeCausalTypes(m.Labels())
	if err != nil {
		return formatter.Fail(err)
	}

	n := space.Size()
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}
	result := TypesResult{
		Space:       space.String(),
		CausalTypes: space.Size(),
		Nodes:       m.NodeNames(),
		Types:       make([][]string, n),
	}
	for i := range n {
		row := make([]string, len(labels))
		for j := range labels {
			row[j] = labels[j][i]
		}
		result.Types[i] = row
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%d causal type(s) (%s)\n\n", result.CausalTypes, result.Space)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "type\t%s\n", strings.Join(result.Nodes, "\t"))
	for i, row := range result.Types {
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n < result.CausalTypes {
		fmt.Fprintf(w, "... %d more\n", result.CausalTypes-n)
	}
	return nil
}
