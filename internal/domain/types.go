package domain

import "fmt"

// RecordType identifies the kind of ArchivesSpace record an operation targets
type RecordType string

const (
	TypeArchivalObject RecordType = "archival_objects"
	TypeResource       RecordType = "resources"
)

// ParseRecordType validates a user-supplied record type string
func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(s) {
	case TypeArchivalObject, TypeResource:
		return RecordType(s), nil
	}
	return "", fmt.Errorf("invalid record type %q (expected %q or %q)", s, TypeArchivalObject, TypeResource)
}

// Parent identifies the destination container for all moves in one run
type Parent struct {
	Type RecordType
	ID   int
}

func (p Parent) String() string {
	return fmt.Sprintf("%s/%d", p.Type, p.ID)
}

// MoveRecord is one row of the input spreadsheet after normalization.
// Position is a dense 1-based index assigned in file order; SourceRow is
// the physical 1-based row in the source file, kept for diagnostics.
type MoveRecord struct {
	ID        int
	Position  int
	SourceRow int
}

// ParentValidation is the result of checking that the target parent exists
type ParentValidation struct {
	Exists bool
	Title  string
	Err    string
}

// ChildSummary aggregates sampled child validation results for one run
type ChildSummary struct {
	TotalChecked        int
	ValidCount          int
	InvalidCount        int
	Errors              []string
	Warnings            []string
	ReparentingDetected bool
	// CurrentParents maps object id to the archival-object ancestor it
	// currently sits under, for objects that would be reparented.
	CurrentParents map[int]int
}

// OK reports whether the run may proceed: at least one valid record and no
// invalid ones among the sample.
func (s ChildSummary) OK() bool {
	return s.ValidCount > 0 && s.InvalidCount == 0
}

// OperationType describes the run for operator display
func (s ChildSummary) OperationType() string {
	if s.ReparentingDetected {
		return "reparenting"
	}
	return "reordering"
}

// MoveStatus is the outcome state of a single move call
type MoveStatus string

const (
	MoveSuccess MoveStatus = "success"
	MoveFailed  MoveStatus = "failed"
)

// MoveOutcome records the result of moving one object
type MoveOutcome struct {
	ObjectID int
	Position int
	Status   MoveStatus
	Detail   string
}

// BulkResult aggregates the outcomes of a full move run
type BulkResult struct {
	Total        int
	SuccessCount int
	ErrorCount   int
	Outcomes     []MoveOutcome
}

// Add appends an outcome and updates the counters
func (r *BulkResult) Add(o MoveOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Status == MoveSuccess {
		r.SuccessCount++
	} else {
		r.ErrorCount++
	}
}
