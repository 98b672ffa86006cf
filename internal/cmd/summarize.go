package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/envsummary/internal/config"
	"github.com/harrison/envsummary/internal/export"
	"github.com/harrison/envsummary/internal/filelock"
	"github.com/harrison/envsummary/internal/history"
	"github.com/harrison/envsummary/internal/logger"
	"github.com/harrison/envsummary/internal/summary"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file named by --config, or the default one
// in the working directory, and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Only override config values for flags the user actually set
	var logLevelPtr, workbookPtr, edgesPtr, historyDBPtr *string
	var coercePtr, historyPtr *bool

	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("coerce-environment") {
		v, _ := cmd.Flags().GetBool("coerce-environment")
		coercePtr = &v
	}
	if cmd.Flags().Changed("xlsx") {
		v, _ := cmd.Flags().GetString("xlsx")
		workbookPtr = &v
	}
	if cmd.Flags().Changed("edges") {
		v, _ := cmd.Flags().GetString("edges")
		edgesPtr = &v
	}
	if cmd.Flags().Changed("history") {
		v, _ := cmd.Flags().GetBool("history")
		historyPtr = &v
	}
	if cmd.Flags().Changed("history-db") {
		v, _ := cmd.Flags().GetString("history-db")
		historyDBPtr = &v
	}

	cfg.MergeWithFlags(logLevelPtr, coercePtr, workbookPtr, edgesPtr, historyPtr, historyDBPtr)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return summarizeFile(ctx, cfg, log, args[0], args[1])
}

// summarizeFile runs one input through aggregation and writes every
// configured output. An input without environments writes nothing.
func summarizeFile(ctx context.Context, cfg *config.Config, log logger.Logger, inputPath, outputPath string) error {
	start := time.Now()

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	log.LogDebug(fmt.Sprintf("Reading %s", inputPath))
	result, err := summary.Summarize(ctx, in, summary.Options{CoerceEnvironment: cfg.CoerceEnvironment})
	if err != nil {
		return fmt.Errorf("failed to summarize %s: %w", inputPath, err)
	}

	if result.Empty() {
		log.LogDiagnostic(fmt.Sprintf("No rows found in %s.", inputPath))
		return nil
	}

	for _, env := range result.Environments {
		log.LogEnvironment(env)
	}

	err = filelock.WriteFile(outputPath, func(w io.Writer) error {
		return export.WriteCSV(w, result.Environments)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	if cfg.WorkbookPath != "" {
		err = filelock.WriteFile(cfg.WorkbookPath, func(w io.Writer) error {
			return export.WriteWorkbook(w, result.Environments)
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.WorkbookPath, err)
		}
		log.LogInfo(fmt.Sprintf("Workbook written to %s", cfg.WorkbookPath))
	}

	if cfg.EdgesPath != "" {
		err = filelock.WriteFile(cfg.EdgesPath, func(w io.Writer) error {
			return export.WriteEdges(w, filepath.Base(inputPath), result.Edges)
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.EdgesPath, err)
		}
		log.LogInfo(fmt.Sprintf("Edge snapshots written to %s (%d rows)", cfg.EdgesPath, len(result.Edges)))
	}

	var runID string
	if cfg.History.Enabled {
		runID, err = recordRun(ctx, cfg, inputPath, outputPath, result)
		if err != nil {
			return err
		}
	}

	log.LogRunSummary(logger.RunSummary{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		Environments: len(result.Environments),
		RowsRead:     result.RowsRead,
		RowsSkipped:  result.RowsSkipped,
		Seed:         result.Seed,
		RunID:        runID,
		Duration:     time.Since(start),
	})
	return nil
}

func recordRun(ctx context.Context, cfg *config.Config, inputPath, outputPath string, result *summary.Result) (string, error) {
	dbPath, err := cfg.ResolveHistoryDBPath()
	if err != nil {
		return "", fmt.Errorf("failed to resolve history database: %w", err)
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	run := &history.Run{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		Seed:         result.Seed,
		Args:         result.Args,
		RowsRead:     result.RowsRead,
		RowsSkipped:  result.RowsSkipped,
		Environments: result.Environments,
	}
	if err := store.RecordRun(ctx, run); err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}
