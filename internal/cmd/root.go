package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// Usage is the one-line synopsis printed for argument errors.
const Usage = "usage: envsummary <input.csv> <output.csv>"

// UsageError reports invalid positional arguments.
type UsageError struct{}

func (e *UsageError) Error() string {
	return Usage
}

// exactPaths requires the input and output paths.
func exactPaths(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return &UsageError{}
	}
	return nil
}

// NewRootCommand creates and returns the root cobra command for envsummary
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envsummary <input.csv> <output.csv>",
		Short: "Summarize simulation output per environment",
		Long: `envsummary reads a CSV of per-generation simulation records and writes
one summary row per Environment: first, last, min, max and mean B/D Ratio,
mean Fitness, the number of generations, the B/D change within the
environment and the B/D jump from the previous environment.

The run seed is recovered from a "# ARGS seed=<n>" or "SEED:<n>" header cell.

Configuration is loaded from .envsummary/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  envsummary run.csv summary.csv
  envsummary run.csv summary.csv --xlsx summary.xlsx
  envsummary run.csv summary.csv --edges env_edges.csv
  envsummary run.csv summary.csv --history --log-level debug
  envsummary history --limit 5`,
		Version:       Version,
		Args:          exactPaths,
		RunE:          runSummarize,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .envsummary/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("xlsx", "", "Also write the summary to this .xlsx workbook")
	cmd.Flags().String("edges", "", "Also write the first and last two generations of each Environment block to this CSV")
	cmd.Flags().Bool("coerce-environment", false, "Use the leading integer of non-numeric Environment values instead of failing")
	cmd.Flags().Bool("history", false, "Record this run in the history database")
	cmd.Flags().String("history-db", "", "History database path (implies --history)")

	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// Execute runs the root command and maps errors to an exit code.
// Usage errors print only the usage line.
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		if _, ok := err.(*UsageError); ok {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
