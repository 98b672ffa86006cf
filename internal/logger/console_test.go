package logger

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/harrison/envsummary/internal/models"
	"github.com/stretchr/testify/assert"
)

// TestLogLevelFiltering verifies that messages are filtered based on log level
func TestLogLevelFiltering(t *testing.T) {
	levels := []string{"trace", "debug", "info", "warn", "error"}

	for ci, configured := range levels {
		for mi, message := range levels {
			name := configured + " logger, " + message + " message"
			t.Run(name, func(t *testing.T) {
				buf := &bytes.Buffer{}
				logger := NewConsoleLogger(buf, configured)

				switch message {
				case "trace":
					logger.LogTrace("hello")
				case "debug":
					logger.LogDebug("hello")
				case "info":
					logger.LogInfo("hello")
				case "warn":
					logger.LogWarn("hello")
				case "error":
					logger.LogError("hello")
				}

				shouldAppear := mi >= ci
				assert.Equal(t, shouldAppear, strings.Contains(buf.String(), "hello"))
			})
		}
	}
}

func TestConsoleLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogWarn("No rows found in empty.csv.")

	pattern := regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[WARN\] No rows found in empty\.csv\.\n$`)
	assert.Regexp(t, pattern, buf.String())
}

func TestConsoleLoggerNoColorForBuffers(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogError("boom")

	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNilWriterDiscards(t *testing.T) {
	logger := NewConsoleLogger(nil, "trace")

	assert.NotPanics(t, func() {
		logger.LogInfo("ignored")
		logger.LogRunSummary(RunSummary{})
		logger.LogEnvironment(models.NewEnvironmentStats(1, models.OptionalInt{}))
	})
}

func TestNormalizeLevel(t *testing.T) {
	assert.Equal(t, "debug", NormalizeLevel(" DEBUG "))
	assert.Equal(t, "warn", NormalizeLevel("warn"))
	assert.Equal(t, "info", NormalizeLevel(""))
	assert.Equal(t, "info", NormalizeLevel("verbose"))
}

func TestLogEnvironmentAtDebug(t *testing.T) {
	stats := models.NewEnvironmentStats(2, models.Int(42))
	stats.InitialBD = models.Float(5)
	stats.FinalBD = models.Float(6)
	stats.AvgBD = 5.5
	stats.NumGens = 2
	stats.BDJump = models.Float(2)

	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogEnvironment(stats)
	assert.Empty(t, buf.String(), "environment lines are debug-level")

	NewConsoleLogger(buf, "debug").LogEnvironment(stats)
	assert.Contains(t, buf.String(), "[DEBUG] env 2: gens=2 bd=5.0->6.0 avg_bd=5.5 jump=2.0")
}

func TestLogEnvironmentMissingBD(t *testing.T) {
	stats := models.NewEnvironmentStats(1, models.OptionalInt{})
	stats.NumGens = 1
	stats.BDJump = models.NA()

	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "debug").LogEnvironment(stats)

	assert.Contains(t, buf.String(), "bd=-->- avg_bd=0.0 jump=N/A")
}

func TestLogRunSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogRunSummary(RunSummary{
		InputPath:    "run.csv",
		OutputPath:   "summary.csv",
		Environments: 3,
		RowsRead:     120,
		RowsSkipped:  2,
		Seed:         models.Int(1234),
		RunID:        "abc",
		Duration:     1500 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "=== Summary ===")
	assert.Contains(t, out, "Input: run.csv")
	assert.Contains(t, out, "Environments: 3")
	assert.Contains(t, out, "Rows read: 120")
	assert.Contains(t, out, "Rows skipped (blank Environment): 2")
	assert.Contains(t, out, "Seed: 1234")
	assert.Contains(t, out, "Output: summary.csv")
	assert.Contains(t, out, "Run ID: abc")
	assert.Contains(t, out, "Duration: 1.5s")
}

func TestLogRunSummaryOmitsOptionalLines(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogRunSummary(RunSummary{Duration: 20 * time.Millisecond})

	out := buf.String()
	assert.Contains(t, out, "Seed: none")
	assert.Contains(t, out, "Duration: 20ms")
	assert.NotContains(t, out, "Rows skipped")
	assert.NotContains(t, out, "Run ID")
}

func TestLogRunSummaryFilteredAtWarn(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "warn").LogRunSummary(RunSummary{})
	assert.Empty(t, buf.String())
}

func TestLogDiagnosticIgnoresLevel(t *testing.T) {
	for _, level := range []string{"trace", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, level)

			logger.LogWarn("filtered")
			logger.LogDiagnostic("No rows found in run.csv.")

			assert.Contains(t, buf.String(), "[WARN] No rows found in run.csv.\n")
			assert.Equal(t, level != "error", strings.Contains(buf.String(), "filtered"))
		})
	}
}

func TestNoOpLoggerImplementsLogger(t *testing.T) {
	var l Logger = NewNoOpLogger()
	assert.NotPanics(t, func() {
		l.LogInfo("x")
		l.LogDiagnostic("x")
		l.LogRunSummary(RunSummary{})
	})
}
