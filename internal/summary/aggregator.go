// Package summary aggregates per-generation simulation records into
// per-environment statistics.
//
// Rows are consumed once, in file order. Each distinct Environment value gets
// one models.EnvironmentStats record that is created on its first row and
// updated by every later row with the same id. Finalize turns the running sums
// into averages and derives the cross-environment transition metrics.
package summary

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/harrison/envsummary/internal/models"
)

// Recognized input columns
const (
	ColumnGeneration   = "Generation"
	ColumnEnvironment  = "Environment"
	ColumnMutated      = "# Organisms Mutated"
	ColumnMutatedShort = "Mutated"
	ColumnBDRatio      = "B/D Ratio"
	ColumnFitness      = "Fitness"
)

// Row is one input record addressed by column name.
type Row interface {
	// Headers returns the header cells of the source, including free-text metadata cells.
	Headers() []string
	// Get returns the raw cell for column and whether the column exists in this row.
	Get(column string) (string, bool)
}

// Options controls how rows are interpreted.
type Options struct {
	// CoerceEnvironment parses Environment values leniently: the leading
	// integer is used and text without one becomes 0. When false, a
	// non-integer Environment fails the run.
	CoerceEnvironment bool
}

// Aggregator holds the running statistics for one pass over the input.
type Aggregator struct {
	opts    Options
	seed    models.OptionalInt
	envs    map[int]*models.EnvironmentStats
	order   []int
	rows    int
	skipped int
	edges   edgeTracker
}

// NewAggregator returns an empty Aggregator.
func NewAggregator(opts Options) *Aggregator {
	return &Aggregator{
		opts: opts,
		envs: make(map[int]*models.EnvironmentStats),
	}
}

// Add folds one row into the statistics. Rows with a blank Environment are
// skipped. The only error is an Environment value that cannot be parsed.
func (a *Aggregator) Add(row Row) error {
	a.rows++

	if !a.seed.IsSet() {
		if seed, ok := ExtractSeed(row.Headers()); ok {
			a.seed = models.Int(seed)
		}
	}

	rawEnv, _ := row.Get(ColumnEnvironment)
	rawEnv = strings.TrimSpace(rawEnv)
	if rawEnv == "" {
		a.skipped++
		return nil
	}

	env, err := a.parseEnvironment(rawEnv)
	if err != nil {
		return fmt.Errorf("row %d: %w", a.rows, err)
	}

	a.edges.observe(env, edgeSnapshot(row, env))

	bd, hasBD := parseMetric(row, ColumnBDRatio)
	fitness, hasFitness := parseMetric(row, ColumnFitness)

	stats, ok := a.envs[env]
	if !ok {
		stats = models.NewEnvironmentStats(env, a.seed)
		a.envs[env] = stats
		a.order = append(a.order, env)
	}

	if hasBD {
		if !stats.InitialBD.IsSet() {
			stats.InitialBD = models.Float(bd)
		}
		stats.FinalBD = models.Float(bd)
		if lo, ok := stats.MinBD.Get(); !ok || bd < lo {
			stats.MinBD = models.Float(bd)
		}
		if hi, ok := stats.MaxBD.Get(); !ok || bd > hi {
			stats.MaxBD = models.Float(bd)
		}
		stats.AvgBD += bd
	}

	if hasFitness {
		stats.AvgFitness += fitness
	}

	stats.NumGens++
	return nil
}

// Seed returns the seed found so far.
func (a *Aggregator) Seed() models.OptionalInt {
	return a.seed
}

// Len returns the number of distinct environments seen.
func (a *Aggregator) Len() int {
	return len(a.envs)
}

// Rows returns the number of rows passed to Add.
func (a *Aggregator) Rows() int {
	return a.rows
}

// Skipped returns the number of rows ignored for a blank Environment.
func (a *Aggregator) Skipped() int {
	return a.skipped
}

// Environments returns the records in first-seen order.
func (a *Aggregator) Environments() []*models.EnvironmentStats {
	out := make([]*models.EnvironmentStats, 0, len(a.order))
	for _, env := range a.order {
		out = append(out, a.envs[env])
	}
	return out
}

// Edges returns the first and last two generations of every contiguous
// Environment block, in file order.
func (a *Aggregator) Edges() []models.EdgeSnapshot {
	return a.edges.snapshots()
}

func (a *Aggregator) parseEnvironment(raw string) (int, error) {
	if a.opts.CoerceEnvironment {
		return coerceInt(raw), nil
	}
	env, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", ColumnEnvironment, raw)
	}
	return env, nil
}

// parseMetric reads a float cell. Blank, unparseable and NaN cells are missing.
func parseMetric(row Row, column string) (float64, bool) {
	raw, ok := row.Get(column)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// coerceInt returns the optionally signed leading integer of s, or 0.
// Values beyond the int range saturate.
func coerceInt(s string) int {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			break
		}
		n = n*10 + d
	}

	if neg {
		return -n
	}
	return n
}
