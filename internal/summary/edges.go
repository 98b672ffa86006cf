package summary

import (
	"math"

	"github.com/harrison/envsummary/internal/models"
)

// edgeWidth is the number of generations kept from each end of a block.
const edgeWidth = 2

// edgeTracker records the first and last generations of each contiguous
// block of rows sharing an Environment. A block ends when a row carries a
// different Environment; rows with a blank Environment do not end it.
type edgeTracker struct {
	env     int
	started bool
	head    []models.EdgeSnapshot
	tail    []models.EdgeSnapshot
	done    []models.EdgeSnapshot
}

// observe adds a row of environment env. snap is nil when the row has no
// usable Generation; such a row still extends the block.
func (t *edgeTracker) observe(env int, snap *models.EdgeSnapshot) {
	if !t.started || env != t.env {
		t.flush()
		t.env = env
		t.started = true
	}
	if snap == nil {
		return
	}

	if len(t.head) < edgeWidth {
		t.head = append(t.head, *snap)
	}
	t.tail = append(t.tail, *snap)
	if len(t.tail) > edgeWidth {
		t.tail = t.tail[1:]
	}
}

func (t *edgeTracker) flush() {
	t.done = appendBlock(t.done, t.head, t.tail)
	t.head = nil
	t.tail = nil
}

// snapshots returns every block's edges in file order, including the
// block still open.
func (t *edgeTracker) snapshots() []models.EdgeSnapshot {
	out := make([]models.EdgeSnapshot, len(t.done), len(t.done)+2*edgeWidth)
	copy(out, t.done)
	return appendBlock(out, t.head, t.tail)
}

// appendBlock emits head rows tagged begin then tail rows tagged end. Short
// blocks appear in both.
func appendBlock(out, head, tail []models.EdgeSnapshot) []models.EdgeSnapshot {
	if len(head) == 0 {
		return out
	}
	for _, s := range head {
		s.Tag = models.EdgeBegin
		out = append(out, s)
	}
	for _, s := range tail {
		s.Tag = models.EdgeEnd
		out = append(out, s)
	}
	return out
}

// edgeSnapshot builds the snapshot for a row, or nil without a Generation.
func edgeSnapshot(row Row, env int) *models.EdgeSnapshot {
	gen, ok := parseMetric(row, ColumnGeneration)
	if !ok || math.IsInf(gen, 0) {
		return nil
	}

	mutated, hasMutated := parseMetric(row, ColumnMutated)
	if !hasMutated {
		mutated, hasMutated = parseMetric(row, ColumnMutatedShort)
	}
	bd, hasBD := parseMetric(row, ColumnBDRatio)
	fitness, hasFitness := parseMetric(row, ColumnFitness)

	return &models.EdgeSnapshot{
		Environment: env,
		Generation:  int64(gen),
		Mutated:     optional(mutated, hasMutated),
		BDRatio:     optional(bd, hasBD),
		Fitness:     optional(fitness, hasFitness),
	}
}

func optional(v float64, ok bool) models.OptionalFloat {
	if !ok {
		return models.OptionalFloat{}
	}
	return models.Float(v)
}
