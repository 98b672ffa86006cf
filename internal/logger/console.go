// Package logger provides leveled console logging for envsummary runs.
//
// Messages are written as "[HH:MM:SS] [LEVEL] message". Level tags are
// colorized when the destination is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/envsummary/internal/models"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the logging surface used by the CLI.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogDiagnostic(message string)
	LogEnvironment(stats *models.EnvironmentStats)
	LogRunSummary(summary RunSummary)
}

// RunSummary describes a completed run for LogRunSummary.
type RunSummary struct {
	InputPath    string
	OutputPath   string
	Environments int
	RowsRead     int
	RowsSkipped  int
	Seed         models.OptionalInt
	RunID        string // Empty when history is disabled
	Duration     time.Duration
}

// ConsoleLogger logs to a writer with timestamps and level filtering.
// It is safe for concurrent use.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything
// else falls back to info.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    NormalizeLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY-backed file and color is not disabled.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor && (f == os.Stdout || f == os.Stderr) {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NormalizeLevel lowercases a level name, returning "info" for unknown names.
func NormalizeLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if ValidLevel(normalized) {
		return normalized
	}
	return "info"
}

// ValidLevel reports whether level is one of trace, debug, info, warn, error.
func ValidLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message.
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// LogDiagnostic logs a warning that must reach the user whatever the
// configured level.
func (cl *ConsoleLogger) LogDiagnostic(message string) {
	if cl.writer == nil {
		return
	}
	cl.write("WARN", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}
	cl.write(level, message)
}

func (cl *ConsoleLogger) write(level string, message string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), cl.levelTag(level), message)
}

func (cl *ConsoleLogger) levelTag(level string) string {
	if !cl.colorOutput {
		return level
	}
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

// LogEnvironment logs one finalized environment at DEBUG level.
// Format: "[HH:MM:SS] [DEBUG] env <id>: gens=<n> bd=<initial>-><final> avg_bd=<x> jump=<y>"
func (cl *ConsoleLogger) LogEnvironment(stats *models.EnvironmentStats) {
	if stats == nil {
		return
	}
	initial := stats.InitialBD.String()
	if initial == "" {
		initial = "-"
	}
	final := stats.FinalBD.String()
	if final == "" {
		final = "-"
	}
	cl.LogDebug(fmt.Sprintf("env %d: gens=%d bd=%s->%s avg_bd=%s jump=%s",
		stats.Env,
		stats.NumGens,
		initial,
		final,
		models.FormatFloat(stats.AvgBD),
		stats.BDJump.String(),
	))
}

// LogRunSummary logs the run summary at INFO level.
func (cl *ConsoleLogger) LogRunSummary(summary RunSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	seed := summary.Seed.String()
	if seed == "" {
		seed = "none"
	}

	header := "=== Summary ==="
	envs := fmt.Sprintf("Environments: %d", summary.Environments)
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		envs = color.New(color.FgGreen).Sprint(envs)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, header)
	fmt.Fprintf(&b, "[%s] Input: %s\n", ts, summary.InputPath)
	fmt.Fprintf(&b, "[%s] %s\n", ts, envs)
	fmt.Fprintf(&b, "[%s] Rows read: %d\n", ts, summary.RowsRead)
	if summary.RowsSkipped > 0 {
		skipped := fmt.Sprintf("Rows skipped (blank Environment): %d", summary.RowsSkipped)
		if cl.colorOutput {
			skipped = color.New(color.FgYellow).Sprint(skipped)
		}
		fmt.Fprintf(&b, "[%s] %s\n", ts, skipped)
	}
	fmt.Fprintf(&b, "[%s] Seed: %s\n", ts, seed)
	fmt.Fprintf(&b, "[%s] Output: %s\n", ts, summary.OutputPath)
	if summary.RunID != "" {
		fmt.Fprintf(&b, "[%s] Run ID: %s\n", ts, summary.RunID)
	}
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(summary.Duration))

	io.WriteString(cl.writer, b.String())
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration renders short durations in milliseconds and longer ones in seconds.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

var (
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*NoOpLogger)(nil)
)

// NoOpLogger discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string)                       {}
func (n *NoOpLogger) LogDebug(message string)                       {}
func (n *NoOpLogger) LogInfo(message string)                        {}
func (n *NoOpLogger) LogWarn(message string)                        {}
func (n *NoOpLogger) LogError(message string)                       {}
func (n *NoOpLogger) LogDiagnostic(message string)                  {}
func (n *NoOpLogger) LogEnvironment(stats *models.EnvironmentStats) {}
func (n *NoOpLogger) LogRunSummary(summary RunSummary)              {}
