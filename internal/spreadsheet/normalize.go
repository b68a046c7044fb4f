package spreadsheet

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/archival-ops/aspace-reorder/internal/domain"
)

// defaultAliases are the column names ArchivesSpace exports and their common
// variations. Config may extend the list; discovery order does not matter
// because exact matching wins over the fuzzier strategies.
var defaultAliases = []string{
	"Id", "ID", "id", "Object ID", "ObjectID", "Archival Object ID",
	"ArchivalObjectID", "Record ID", "RecordID", "Identifier",
	"ASpace ID", "ASpaceID", "Aspace ID", "AspaceID",
}

// substringTokens drive the second discovery strategy
var substringTokens = []string{"id", "identifier", "object"}

// ErrNoValidRecords is returned when normalization leaves zero usable rows
var ErrNoValidRecords = errors.New("no rows with a valid numeric identifier found")

// NoIDColumnError reports failed column discovery with enough context for
// the operator to fix the source file
type NoIDColumnError struct {
	Columns []string
}

func (e *NoIDColumnError) Error() string {
	return fmt.Sprintf("could not find an ID column; available columns: %s (common names: %s)",
		strings.Join(e.Columns, ", "), strings.Join(defaultAliases[:5], ", "))
}

// Options controls normalization
type Options struct {
	// ExtraAliases extends the built-in ID column alias list.
	ExtraAliases []string
	Logger       *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// FindIDColumn locates the identifier column using an ordered strategy
// chain: exact alias match, then a case-insensitive substring match, then a
// mostly-numeric content heuristic. Returns the column index and the name
// of the strategy that matched.
func FindIDColumn(t *Table, extraAliases []string) (int, string, error) {
	aliases := append(append([]string{}, defaultAliases...), extraAliases...)

	for _, alias := range aliases {
		if idx := t.ColumnIndex(alias); idx >= 0 {
			return idx, "exact", nil
		}
	}

	for i, col := range t.Columns {
		lower := strings.ToLower(col)
		for _, token := range substringTokens {
			if strings.Contains(lower, token) {
				return i, "substring", nil
			}
		}
	}

	for i := range t.Columns {
		if mostlyNumeric(t, i) {
			return i, "numeric", nil
		}
	}

	return -1, "", &NoIDColumnError{Columns: t.Columns}
}

// mostlyNumeric reports whether more than half of a column's non-empty
// cells parse as numbers
func mostlyNumeric(t *Table, col int) bool {
	var total, numeric int
	for row := range t.Rows {
		cell := strings.TrimSpace(t.Cell(row, col))
		if cell == "" {
			continue
		}
		total++
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			numeric++
		}
	}
	return total > 0 && numeric*2 > total
}

// Normalize turns a loaded table into an ordered list of move records.
// The first data row is assumed to be a repeated header row and dropped; a
// second leading row is dropped only when its ID cell is non-numeric (the
// data-validation placeholder ArchivesSpace exports carry). Rows whose ID
// cell does not coerce to an integer are skipped without consuming a
// position, so positions always form the dense sequence 1..N.
func Normalize(t *Table, opts Options) ([]domain.MoveRecord, error) {
	logger := opts.logger()

	idCol, strategy, err := FindIDColumn(t, opts.ExtraAliases)
	if err != nil {
		return nil, err
	}
	logger.Info("found ID column", "column", t.Columns[idCol], "strategy", strategy)

	start := 0
	if len(t.Rows) > 0 {
		start = 1 // repeated header row
	}
	if len(t.Rows) > start {
		if _, ok := ParseID(t.Cell(start, idCol)); !ok {
			logger.Info("dropping data-validation row", "row", start+2)
			start++
		}
	}

	var records []domain.MoveRecord
	for i := start; i < len(t.Rows); i++ {
		if emptyRow(t.Rows[i]) {
			continue
		}
		cell := t.Cell(i, idCol)
		id, ok := ParseID(cell)
		if !ok {
			logger.Warn("skipping row with invalid ID", "row", i+2, "value", cell)
			continue
		}
		records = append(records, domain.MoveRecord{
			ID:        id,
			Position:  len(records) + 1,
			SourceRow: i + 2, // +1 for the column header line, +1 for 1-based rows
		})
	}

	if len(records) == 0 {
		return nil, ErrNoValidRecords
	}

	logger.Info("prepared records for reordering", "count", len(records))
	return records, nil
}

// ParseID coerces a cell to an integer identifier, tolerating the float
// formatting ("12345.0") spreadsheet exports produce
func ParseID(cell string) (int, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if id, err := strconv.Atoi(s); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int(f), true
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
