package excel

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"bayesplay/internal/grid"
)

// Writer exports sweep tables to .xlsx or .csv files
type Writer struct {
	config ExportConfig
	logger *slog.Logger
}

// NewWriter creates a writer. A nil logger discards output.
func NewWriter(config ExportConfig, logger *slog.Logger) *Writer {
	if config.SheetName == "" {
		config.SheetName = DefaultExportConfig().SheetName
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{config: config, logger: logger}
}

// WriteSweep writes the table with an x column followed by one column per
// series. Nil cells are left empty. The format follows the file extension.
func (w *Writer) WriteSweep(path string, table *grid.Table) error {
	if table == nil || len(table.X) == 0 {
		return fmt.Errorf("nothing to export")
	}
	for _, c := range table.Columns {
		if len(c.Values) != len(table.X) {
			return fmt.Errorf("column %q has %d values for %d points", c.Name, len(c.Values), len(table.X))
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return w.writeXLSX(path, table)
	case ".csv":
		return w.writeCSV(path, table)
	default:
		return fmt.Errorf("unsupported export file type: %s", filepath.Ext(path))
	}
}

func header(table *grid.Table) []string {
	h := make([]string, 0, len(table.Columns)+1)
	h = append(h, "x")
	for _, c := range table.Columns {
		h = append(h, c.Name)
	}
	return h
}

func (w *Writer) writeXLSX(path string, table *grid.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := w.config.SheetName
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	h := header(table)
	headRow := make([]interface{}, len(h))
	for i, name := range h {
		headRow[i] = name
	}
	if err := sw.SetRow("A1", headRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, x := range table.X {
		row := make([]interface{}, 0, len(h))
		row = append(row, x)
		for _, c := range table.Columns {
			if v := c.Values[i]; v != nil {
				row = append(row, *v)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if w.config.WithSummary {
		if err := w.writeSummary(f, table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	w.logger.Info("sweep exported", "path", path, "rows", len(table.X), "columns", len(table.Columns))
	return nil
}

func (w *Writer) writeSummary(f *excelize.File, table *grid.Table) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	head := []interface{}{"series", "count", "missing", "min", "max", "mean", "argmax", "area"}
	if err := f.SetSheetRow(SummarySheet, "A1", &head); err != nil {
		return err
	}

	row := 2
	for _, c := range table.Columns {
		s, err := grid.Summarize(table.X, c)
		if err != nil {
			// a column without finite cells has nothing to summarize
			w.logger.Debug("summary skipped", "series", c.Name, "error", err)
			continue
		}
		values := []interface{}{s.Name, s.Count, s.Missing, s.Min, s.Max, s.Mean, s.ArgMax, s.Area}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (w *Writer) writeCSV(path string, table *grid.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(header(table)); err != nil {
		return err
	}
	record := make([]string, len(table.Columns)+1)
	for i, x := range table.X {
		record[0] = strconv.FormatFloat(x, 'g', -1, 64)
		for j, c := range table.Columns {
			record[j+1] = ""
			if v := c.Values[i]; v != nil {
				record[j+1] = strconv.FormatFloat(*v, 'g', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	w.logger.Info("sweep exported", "path", path, "rows", len(table.X), "columns", len(table.Columns))
	return nil
}
