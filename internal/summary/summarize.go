package summary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/harrison/envsummary/internal/models"
)

// Result is the outcome of summarizing one input.
type Result struct {
	Environments []*models.EnvironmentStats // Finalized, sorted by env
	Seed         models.OptionalInt
	RowsRead     int // Data rows, excluding the header
	RowsSkipped  int // Data rows with a blank Environment
	Edges        []models.EdgeSnapshot
	Args         map[string]string // Simulator parameters from the header
}

// Empty reports whether no environment was found.
func (r *Result) Empty() bool {
	return len(r.Environments) == 0
}

// csvRow adapts a CSV record to Row using a shared header index.
type csvRow struct {
	header []string
	index  map[string]int
	record []string
}

func (r csvRow) Headers() []string {
	return r.header
}

func (r csvRow) Get(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok || i >= len(r.record) {
		return "", false
	}
	return r.record[i], true
}

// Summarize reads a CSV stream with a header row and aggregates it.
// Rows may be shorter or longer than the header. An input without a header
// produces an empty Result.
func Summarize(ctx context.Context, in io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	agg := NewAggregator(opts)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", agg.Rows()+1, err)
		}

		if err := agg.Add(csvRow{header: header, index: index, record: record}); err != nil {
			return nil, err
		}
	}

	return &Result{
		Environments: Finalize(agg.Environments()),
		Seed:         agg.Seed(),
		RowsRead:     agg.Rows(),
		RowsSkipped:  agg.Skipped(),
		Edges:        agg.Edges(),
		Args:         ParseArgs(header),
	}, nil
}
