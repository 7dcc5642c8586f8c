package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/causalcore/internal/engine"
	"github.com/roach88/causalcore/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult summarizes a compiled model.
type CompilationResult struct {
	Name        string        `json:"name"`
	Hash        string        `json:"hash"`
	CausalTypes int           `json:"causal_types"`
	Parameters  int           `json:"parameters"`
	Nodes       []NodeSummary `json:"nodes"`
	Model       *ir.Model     `json:"model"`
}

// NodeSummary describes one compiled node.
type NodeSummary struct {
	Name       string   `json:"name"`
	Parents    []string `json:"parents,omitempty"`
	NodalTypes int      `json:"nodal_types"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <model>",
		Short: "Compile a CUE model to canonical IR",
		Long: `Compile a CUE model (a .cue file or a directory) to canonical IR.

The model is compiled, validated and summarized. With --output the
canonical JSON document, whose hash identifies the model in the run
store, is written to a file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	m, err := LoadValidModel(path)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Compiled model %s with %d node(s)", m.Name, len(m.Nodes))

	result, err := summarize(m)
	if err != nil {
		return formatter.Fail(err)
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeIRToFile(m, opts.Output); err != nil {
			return formatter.Fail(&LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// summarize builds the compile summary of a validated model.
func summarize(m *ir.Model) (*CompilationResult, error) {
	hash, err := ir.ModelHash(m)
	if err != nil {
		return nil, err
	}
	space, err := engine.NewTypeSpace(m.Cardinalities())
	if err != nil {
		return nil, err
	}

	result := &CompilationResult{
		Name:        m.Name,
		Hash:        hash,
		CausalTypes: space.Size(),
		Parameters:  len(m.Parameters()),
		Model:       m,
	}
	for _, n := range m.Nodes {
		result.Nodes = append(result.Nodes, NodeSummary{
			Name:       n.Name,
			Parents:    n.Parents,
			NodalTypes: len(n.NodalTypes),
		})
	}
	return result, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled model %s: %d node(s), %d causal type(s), %d parameter(s)\n\n",
		result.Name, len(result.Nodes), result.CausalTypes, result.Parameters)

	fmt.Fprintln(w, "Nodes:")
	for _, n := range result.Nodes {
		if len(n.Parents) == 0 {
			fmt.Fprintf(w, "  %s: %d nodal type(s), exogenous\n", n.Name, n.NodalTypes)
			continue
		}
		fmt.Fprintf(w, "  %s ← %s: %d nodal type(s)\n", n.Name, strings.Join(n.Parents, ", "), n.NodalTypes)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Hash: %s\n", result.Hash)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote canonical IR to %s\n", outputFile)
	}

	return nil
}

// writeIRToFile writes the model document in canonical JSON, the same bytes
// the model hash is computed over.
func writeIRToFile(m *ir.Model, filename string) error {
	data, err := ir.MarshalCanonical(ir.ModelDocument(m))
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
