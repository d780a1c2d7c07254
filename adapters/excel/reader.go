package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"bayesplay/internal/grid"
)

// SweepReader reads sweep tables written by Writer
type SweepReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewSweepReader creates a reader for an .xlsx or .csv sweep file
func NewSweepReader(filePath string, config ExportConfig) *SweepReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	sheet := config.SheetName
	if sheet == "" {
		sheet = DefaultExportConfig().SheetName
	}
	return &SweepReader{filePath: filePath, fileType: fileType, sheet: sheet}
}

// ReadSweep reads the file back into a table. Empty cells become nil.
func (r *SweepReader) ReadSweep() (*grid.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	return r.processRows(rows)
}

func (r *SweepReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	return rows, nil
}

func (r *SweepReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows converts raw string rows into a table
func (r *SweepReader) processRows(rows [][]string) (*grid.Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("sweep file must have a header row and at least one data row")
	}
	head := rows[0]
	if len(head) < 2 || strings.TrimSpace(head[0]) != "x" {
		return nil, fmt.Errorf("sweep file must start with an x column followed by series")
	}

	table := &grid.Table{
		X:       make([]float64, 0, len(rows)-1),
		Columns: make([]grid.Column, len(head)-1),
	}
	for j := range table.Columns {
		table.Columns[j] = grid.Column{Name: strings.TrimSpace(head[j+1]), Values: make([]*float64, 0, len(rows)-1)}
	}

	for i, row := range rows[1:] {
		if len(row) == 0 {
			return nil, fmt.Errorf("row %d: missing x", i+2)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid x %q: %w", i+2, row[0], err)
		}
		table.X = append(table.X, x)

		for j := range table.Columns {
			var cell *float64
			// excelize trims trailing empty cells from a row
			if j+1 < len(row) && strings.TrimSpace(row[j+1]) != "" {
				v, err := strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64)
				if err != nil {
					return nil, fmt.Errorf("row %d, %s: invalid value %q: %w", i+2, table.Columns[j].Name, row[j+1], err)
				}
				cell = &v
			}
			table.Columns[j].Values = append(table.Columns[j].Values, cell)
		}
	}
	return table, nil
}
