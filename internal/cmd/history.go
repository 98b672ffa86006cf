package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/envsummary/internal/config"
	"github.com/harrison/envsummary/internal/history"
	"github.com/harrison/envsummary/internal/models"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'envsummary history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded summary runs",
		Long: `List runs recorded with --history, newest first.

Runs are read from history.db under the envsummary home directory
($ENVSUMMARY_HOME or ./.envsummary) unless the config file or
--db-path names another database.`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}

	cmd.PersistentFlags().String("db-path", "", "History database path")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(newHistoryShowCommand())

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the environment summary of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}
}

// historyDBPath resolves --db-path, then history.db_path from the config
// file, then the default under the envsummary home.
func historyDBPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("db-path"); path != "" {
		return path, nil
	}
	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.ResolveHistoryDBPath()
}

// openHistory opens the store, or returns nil when no database exists yet.
func openHistory(cmd *cobra.Command) (*history.Store, string, error) {
	dbPath, err := historyDBPath(cmd)
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, dbPath, nil
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return nil, dbPath, fmt.Errorf("open history store: %w", err)
	}
	return store, dbPath, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	limit, _ := cmd.Flags().GetInt("limit")

	store, dbPath, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintf(output, "No runs recorded.\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No runs recorded.\n")
		return nil
	}

	printRuns(output, runs)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	runID := args[0]

	store, _, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%w: %s", history.ErrRunNotFound, runID)
	}
	defer store.Close()

	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, history.ErrRunNotFound) {
			return err
		}
		return fmt.Errorf("get run: %w", err)
	}

	envs, err := store.GetEnvironments(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("get environments: %w", err)
	}
	run.Environments = envs

	printRun(output, run)
	return nil
}

func printRuns(w io.Writer, runs []*history.Run) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "\n=== Recorded Runs (%d) ===\n\n", len(runs))

	for _, run := range runs {
		fmt.Fprintf(w, "  %s  %s\n", run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "    %s -> %s\n", run.InputPath, run.OutputPath)
		fmt.Fprintf(w, "    Environments: %d, Rows: %d, Seed: %s\n",
			run.EnvironmentCount, run.RowsRead, seedLabel(run.Seed))
	}
	fmt.Fprintln(w)
}

func printRun(w io.Writer, run *history.Run) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(w, "\n=== Run %s ===\n\n", run.ID)

	fmt.Fprintf(w, "  Recorded: %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Input: %s\n", run.InputPath)
	fmt.Fprintf(w, "  Output: %s\n", run.OutputPath)
	fmt.Fprintf(w, "  Seed: %s\n", seedLabel(run.Seed))
	if len(run.Args) > 0 {
		fmt.Fprintf(w, "  Args: %s\n", argsLabel(run.Args))
	}
	fmt.Fprintf(w, "  Rows read: %d\n", run.RowsRead)
	if run.RowsSkipped > 0 {
		fmt.Fprintf(w, "  Rows skipped (blank Environment): %d\n", run.RowsSkipped)
	}

	cyan.Fprintf(w, "\n--- Environments ---\n\n")
	for _, env := range run.Environments {
		fmt.Fprintf(w, "  env %d: gens=%d bd=%s->%s min=%s max=%s avg_bd=%s avg_fitness=%s diff=%s jump=%s\n",
			env.Env,
			env.NumGens,
			valueLabel(env.InitialBD),
			valueLabel(env.FinalBD),
			valueLabel(env.MinBD),
			valueLabel(env.MaxBD),
			models.FormatFloat(env.AvgBD),
			models.FormatFloat(env.AvgFitness),
			valueLabel(env.DiffBD),
			valueLabel(env.BDJump),
		)
	}
	fmt.Fprintln(w)
}

func seedLabel(seed models.OptionalInt) string {
	if !seed.IsSet() {
		return "none"
	}
	return seed.String()
}

// argsLabel renders parameters as key=value pairs sorted by key.
func argsLabel(args map[string]string) string {
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = key + "=" + args[key]
	}
	return strings.Join(pairs, " ")
}

func valueLabel(v models.OptionalFloat) string {
	if !v.IsSet() && !v.IsNA() {
		return "-"
	}
	return v.String()
}
