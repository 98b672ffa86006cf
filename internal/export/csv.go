// Package export serializes finalized environment summaries.
//
// Every summary format uses the same table: one header row of field names
// sorted lexicographically, then one row per environment in the order given.
// Edge snapshots have their own fixed-column CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/harrison/envsummary/internal/models"
)

// ErrNoEnvironments is returned when there is nothing to export.
var ErrNoEnvironments = errors.New("no environments to export")

// Table returns the header and rows shared by all export formats.
// The column order is taken from the first record.
func Table(envs []*models.EnvironmentStats) ([]string, [][]string, error) {
	if len(envs) == 0 {
		return nil, nil, ErrNoEnvironments
	}

	columns := envs[0].ColumnNames()
	rows := make([][]string, 0, len(envs))
	for _, env := range envs {
		rows = append(rows, env.Values(columns))
	}
	return columns, rows, nil
}

// WriteCSV writes the summary table as CSV.
func WriteCSV(writer io.Writer, envs []*models.EnvironmentStats) error {
	columns, rows, err := Table(envs)
	if err != nil {
		return err
	}

	return writeRows(writer, columns, rows)
}

// WriteEdges writes edge snapshots as CSV, one row per snapshot, tagged
// with the source file name. The header is written even when edges is empty.
func WriteEdges(writer io.Writer, file string, edges []models.EdgeSnapshot) error {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, e.Values(file))
	}
	return writeRows(writer, models.EdgeColumns, rows)
}

func writeRows(writer io.Writer, columns []string, rows [][]string) error {
	csvWriter := csv.NewWriter(writer)

	if err := csvWriter.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
