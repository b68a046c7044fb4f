package spreadsheet

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "Id,Title\nx,header\n101,Alpha\n102,Beta\n")

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(table.Columns) != 2 || table.Columns[0] != "Id" {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(table.Rows))
	}
	if table.Cell(1, 0) != "101" || table.Cell(1, 1) != "Alpha" {
		t.Errorf("row 1 = %v", table.Rows[1])
	}
}

func TestLoadCSV_RaggedRowsPadded(t *testing.T) {
	path := writeCSV(t, "Id,Title,Level\nx,header,lvl\n101\n")

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Cell(1, 2); got != "" {
		t.Errorf("short row should pad with empty cells, got %q", got)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	if _, err := Load("input.txt"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildPreview(t *testing.T) {
	path := writeCSV(t, "Id,Title\nx,header\nn/a,validation\n101,Alpha\n102,Beta\n101,Alpha again\n")

	p, err := BuildPreview(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Err != nil {
		t.Fatalf("preview error: %v", p.Err)
	}

	if p.IDColumn != "Id" || p.Strategy != "exact" {
		t.Errorf("id column %q via %q", p.IDColumn, p.Strategy)
	}
	if p.RecordCount != 3 {
		t.Errorf("record count = %d, want 3", p.RecordCount)
	}
	if p.DuplicateIDs != 1 {
		t.Errorf("duplicate count = %d, want 1", p.DuplicateIDs)
	}
	if got := p.SampleRow["Title"]; got != "Alpha" {
		t.Errorf("sample title = %q", got)
	}
}

func TestBuildPreview_ReportsProblemWithoutFailing(t *testing.T) {
	path := writeCSV(t, "Name,Notes\na,b\nc,d\n")

	p, err := BuildPreview(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Err == nil {
		t.Fatal("expected preview to carry the discovery problem")
	}
	if p.TotalRows != 2 || p.TotalColumns != 2 {
		t.Errorf("structure still expected: rows=%d cols=%d", p.TotalRows, p.TotalColumns)
	}
}
