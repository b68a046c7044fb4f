package spreadsheet

import (
	"github.com/archival-ops/aspace-reorder/internal/domain"
)

// essentialColumns are the columns worth showing in a preview
var essentialColumns = []string{"Id", "Title", "Level of Description"}

// Preview summarizes a spreadsheet's structure and what normalization
// would do to it, without touching the API
type Preview struct {
	TotalRows    int
	TotalColumns int
	IDColumn     string
	Strategy     string
	SampleIDs    []int
	// SampleRow holds the first surviving data row restricted to the
	// essential columns, in essentialColumns order; empty names skipped.
	SampleRow map[string]string
	Essential []string

	RecordCount  int
	RowsRemoved  int
	DuplicateIDs int

	// Err is set when discovery or normalization would fail; the rest of
	// the preview stays usable for diagnosing the file.
	Err error
}

// BuildPreview loads a file and reports its structure and cleaning effect
func BuildPreview(path string, opts Options) (*Preview, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		TotalRows:    len(t.Rows),
		TotalColumns: len(t.Columns),
	}

	for _, name := range essentialColumns {
		if t.ColumnIndex(name) >= 0 {
			p.Essential = append(p.Essential, name)
		}
	}

	idCol, strategy, err := FindIDColumn(t, opts.ExtraAliases)
	if err != nil {
		p.Err = err
		return p, nil
	}
	p.IDColumn = t.Columns[idCol]
	p.Strategy = strategy

	records, err := Normalize(t, opts)
	if err != nil {
		p.Err = err
		return p, nil
	}

	p.RecordCount = len(records)
	p.RowsRemoved = len(t.Rows) - len(records)
	p.SampleIDs = sampleIDs(records, 5)
	p.DuplicateIDs = duplicateCount(records)
	p.SampleRow = sampleRow(t, records[0].SourceRow-2, p.Essential)

	return p, nil
}

func sampleIDs(records []domain.MoveRecord, n int) []int {
	if len(records) < n {
		n = len(records)
	}
	ids := make([]int, 0, n)
	for _, r := range records[:n] {
		ids = append(ids, r.ID)
	}
	return ids
}

// duplicateCount counts records whose ID already appeared earlier in the
// list; duplicates are legal but worth surfacing before the operator
// confirms the run
func duplicateCount(records []domain.MoveRecord) int {
	seen := make(map[int]bool, len(records))
	dups := 0
	for _, r := range records {
		if seen[r.ID] {
			dups++
		}
		seen[r.ID] = true
	}
	return dups
}

func sampleRow(t *Table, row int, columns []string) map[string]string {
	out := make(map[string]string, len(columns))
	for _, name := range columns {
		if idx := t.ColumnIndex(name); idx >= 0 {
			out[name] = t.Cell(row, idx)
		}
	}
	return out
}
