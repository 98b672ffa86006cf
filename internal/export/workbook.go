package export

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/harrison/envsummary/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the summary table.
const SheetName = "Summary"

// WriteWorkbook writes the summary table as a single-sheet .xlsx workbook.
// Finite numbers become numeric cells; empty, N/A and infinite values stay text.
func WriteWorkbook(writer io.Writer, envs []*models.EnvironmentStats) error {
	columns, rows, err := Table(envs)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write workbook header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style workbook header: %w", err)
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, value := range row {
			cells[j] = cellValue(value)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write workbook row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue converts a serialized summary value into a typed cell value.
func cellValue(s string) interface{} {
	if s == "" || s == models.NotApplicable {
		return s
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return v
	}
	return s
}
