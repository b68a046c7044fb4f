package spreadsheet

import (
	"errors"
	"testing"

	"github.com/archival-ops/aspace-reorder/internal/domain"
	"github.com/archival-ops/aspace-reorder/internal/logging"
)

func opts() Options {
	return Options{Logger: logging.Discard()}
}

func TestFindIDColumn(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		rows     [][]string
		wantCol  int
		strategy string
		wantErr  bool
	}{
		{
			name:     "exact alias",
			columns:  []string{"Title", "ASpace ID"},
			wantCol:  1,
			strategy: "exact",
		},
		{
			name:     "exact beats substring",
			columns:  []string{"Object Number", "Id"},
			wantCol:  1,
			strategy: "exact",
		},
		{
			name:     "substring match",
			columns:  []string{"Title", "Object Number"},
			wantCol:  1,
			strategy: "substring",
		},
		{
			name:    "numeric heuristic",
			columns: []string{"Name", "Value"},
			rows: [][]string{
				{"alpha", "101"},
				{"beta", "102"},
				{"gamma", "x"},
			},
			wantCol:  1,
			strategy: "numeric",
		},
		{
			name:    "no match",
			columns: []string{"Name", "Notes"},
			rows:    [][]string{{"alpha", "beta"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &Table{Columns: tt.columns, Rows: tt.rows}
			col, strategy, err := FindIDColumn(table, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				var noID *NoIDColumnError
				if !errors.As(err, &noID) {
					t.Fatalf("expected NoIDColumnError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if col != tt.wantCol || strategy != tt.strategy {
				t.Errorf("got col %d strategy %q, want col %d strategy %q", col, strategy, tt.wantCol, tt.strategy)
			}
		})
	}
}

func TestFindIDColumn_ExtraAliases(t *testing.T) {
	table := &Table{Columns: []string{"Signatur", "Beschreibung"}}
	col, strategy, err := FindIDColumn(table, []string{"Signatur"})
	if err != nil {
		t.Fatal(err)
	}
	if col != 0 || strategy != "exact" {
		t.Errorf("got col %d strategy %q", col, strategy)
	}
}

func TestNormalize_HeaderAndValidationRows(t *testing.T) {
	table := &Table{
		Columns: []string{"Id", "Title"},
		Rows: [][]string{
			{"x", "header"},
			{"n/a", "validation"},
			{"101", "A"},
			{"102", "B"},
		},
	}

	records, err := Normalize(table, opts())
	if err != nil {
		t.Fatal(err)
	}

	want := []domain.MoveRecord{
		{ID: 101, Position: 1, SourceRow: 4},
		{ID: 102, Position: 2, SourceRow: 5},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, r := range records {
		if r != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, r, want[i])
		}
	}
}

func TestNormalize_NumericSecondRowKept(t *testing.T) {
	table := &Table{
		Columns: []string{"Id"},
		Rows: [][]string{
			{"x"},
			{"101"},
			{"102"},
		},
	}

	records, err := Normalize(table, opts())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ID != 101 || records[1].ID != 102 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestNormalize_DensePositionsSkipInvalidRows(t *testing.T) {
	table := &Table{
		Columns: []string{"Id"},
		Rows: [][]string{
			{"x"},
			{"101"},
			{"bogus"},
			{"102"},
			{""},
			{"103"},
		},
	}

	records, err := Normalize(table, opts())
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, r := range records {
		if r.Position != i+1 {
			t.Errorf("record %d has position %d, want %d", i, r.Position, i+1)
		}
	}
	if records[2].ID != 103 || records[2].Position != 3 {
		t.Errorf("last record = %+v", records[2])
	}
}

func TestNormalize_DuplicatesKept(t *testing.T) {
	table := &Table{
		Columns: []string{"Id"},
		Rows: [][]string{
			{"x"},
			{"101"},
			{"101"},
		},
	}

	records, err := Normalize(table, opts())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("duplicates must not be deduplicated, got %d records", len(records))
	}
	if records[0].Position != 1 || records[1].Position != 2 {
		t.Errorf("positions = %d, %d", records[0].Position, records[1].Position)
	}
}

func TestNormalize_AliasIndependence(t *testing.T) {
	rows := [][]string{
		{"x"},
		{"101"},
		{"102"},
	}
	a := &Table{Columns: []string{"ASpace ID"}, Rows: rows}
	b := &Table{Columns: []string{"Id"}, Rows: rows}

	ra, err := Normalize(a, opts())
	if err != nil {
		t.Fatal(err)
	}
	rb, err := Normalize(b, opts())
	if err != nil {
		t.Fatal(err)
	}

	if len(ra) != len(rb) {
		t.Fatalf("record counts differ: %d vs %d", len(ra), len(rb))
	}
	for i := range ra {
		if ra[i] != rb[i] {
			t.Errorf("record %d differs: %+v vs %+v", i, ra[i], rb[i])
		}
	}
}

func TestNormalize_NoValidRecords(t *testing.T) {
	table := &Table{
		Columns: []string{"Id"},
		Rows: [][]string{
			{"x"},
			{"n/a"},
			{"also not a number"},
		},
	}

	_, err := Normalize(table, opts())
	if !errors.Is(err, ErrNoValidRecords) {
		t.Fatalf("expected ErrNoValidRecords, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"123", 123, true},
		{" 123 ", 123, true},
		{"123.0", 123, true},
		{"123.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseID(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
