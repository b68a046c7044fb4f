// Package spreadsheet loads tabular input files and normalizes them into
// ordered move records.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a loaded spreadsheet: the first file row becomes Columns, every
// following row a string slice in Rows. Rows are padded to len(Columns).
type Table struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the cell at row/col, or "" when the row is short
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnIndex returns the index of a column by exact name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Load reads a tabular file by extension: .xlsx/.xlsm via excelize,
// .csv via encoding/csv
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadExcel(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .xlsx, .xlsm or .csv)", filepath.Ext(path))
	}
}

func loadExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s contains no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return fromRows(path, rows)
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return fromRows(path, rows)
}

func fromRows(path string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	t := &Table{Columns: rows[0]}
	for _, row := range rows[1:] {
		padded := make([]string, len(t.Columns))
		copy(padded, row)
		t.Rows = append(t.Rows, padded)
	}
	return t, nil
}
