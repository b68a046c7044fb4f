package runlog

import (
	"path/filepath"
	"testing"

	"github.com/archival-ops/aspace-reorder/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var testParent = domain.Parent{Type: domain.TypeResource, ID: 9}

func TestBeginAndFinishRun(t *testing.T) {
	store := testStore(t)

	run, err := store.BeginRun(testParent, "bulk", 120)
	if err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Fatal("run id should be assigned")
	}
	if run.Status != RunRunning {
		t.Errorf("status = %q", run.Status)
	}

	if err := store.FinishRun(run.ID, RunCompleted, 118, 2); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != RunCompleted || got.SuccessCount != 118 || got.ErrorCount != 2 {
		t.Errorf("run = %+v", got)
	}
	if got.Parent != testParent || got.Mode != "bulk" || got.Total != 120 {
		t.Errorf("run = %+v", got)
	}
	if got.FinishedAt == nil {
		t.Error("finished_at should be set")
	}
}

func TestRecordAndReadOutcomes(t *testing.T) {
	store := testStore(t)

	run, err := store.BeginRun(testParent, "individual", 2)
	if err != nil {
		t.Fatal(err)
	}

	outcomes := []domain.MoveOutcome{
		{ObjectID: 101, Position: 1, Status: domain.MoveSuccess, Detail: `{"status":"Updated"}`},
		{ObjectID: 102, Position: 2, Status: domain.MoveFailed, Detail: "API returned 500"},
	}
	if err := store.RecordOutcomes(run.ID, outcomes); err != nil {
		t.Fatal(err)
	}

	got, err := store.Outcomes(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d outcomes", len(got))
	}
	for i := range outcomes {
		if got[i] != outcomes[i] {
			t.Errorf("outcome %d = %+v, want %+v", i, got[i], outcomes[i])
		}
	}
}

func TestListRuns(t *testing.T) {
	store := testStore(t)

	first, err := store.BeginRun(testParent, "bulk", 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.BeginRun(testParent, "individual", 2)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Errorf("missing runs in listing: %v", ids)
	}
}

func TestLog(t *testing.T) {
	store := testStore(t)

	run, err := store.BeginRun(testParent, "bulk", 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Log(run.ID, "error", "object 101 at position 1: API returned 500"); err != nil {
		t.Fatal(err)
	}
}
