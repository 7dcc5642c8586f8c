package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/causalcore/internal/engine"
	"github.com/roach88/causalcore/internal/metrics"
	"github.com/roach88/causalcore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Workers int
	Metrics bool // dump Prometheus metrics to stderr after the command

	registry *metrics.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the causalcore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "causalcore",
		Short: "causalcore - structural causal model toolkit",
		Long: `Enumerate causal types, realize outcomes under interventions,
evaluate queries and aggregate type probabilities for structural causal
models written in CUE.`,
		SilenceErrors: true, // main prints errors that commands did not report
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Workers < 1 {
				return fmt.Errorf("invalid workers %d: must be at least 1", opts.Workers)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Metrics {
				return nil
			}
			return opts.metricsRegistry().WriteText(cmd.ErrOrStderr())
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", 1, "engine worker count")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print metrics to stderr on exit")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewRealizeCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTypeProbCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// metricsRegistry returns the registry shared by the engine and store of
// one CLI invocation.
func (o *RootOptions) metricsRegistry() *metrics.Registry {
	if o.registry == nil {
		o.registry = metrics.NewRegistry()
	}
	return o.registry
}

// logger writes to stderr so JSON output on stdout stays parseable.
// Verbose enables debug level; otherwise only warnings are shown.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// newEngine creates an engine configured from the global flags.
func (o *RootOptions) newEngine(cmd *cobra.Command) *engine.Engine {
	return engine.New(
		engine.WithWorkers(o.Workers),
		engine.WithLogger(o.logger(cmd)),
		engine.WithMetrics(o.metricsRegistry()),
	)
}

// openStore opens the run store at path with the shared metrics registry.
func (o *RootOptions) openStore(path string) (*store.Store, error) {
	return store.Open(path, store.WithMetrics(o.metricsRegistry()))
}

// newFormatter creates an output formatter for cmd.
func (o *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}
