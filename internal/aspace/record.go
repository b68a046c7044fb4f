package aspace

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NoTitle is the display fallback for records without a usable title
const NoTitle = "No title found"

// Ref is a reference to another record by URI
type Ref struct {
	Ref string `json:"ref"`
}

// TailID parses the trailing path segment of the reference as an integer
func (r Ref) TailID() (int, bool) {
	idx := strings.LastIndex(r.Ref, "/")
	if idx < 0 || idx == len(r.Ref)-1 {
		return 0, false
	}
	id, err := strconv.Atoi(r.Ref[idx+1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

// TitleField tolerates the API returning a title as either a string or a
// list of strings; a list resolves to its first element.
type TitleField string

func (t *TitleField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TitleField(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			*t = TitleField(list[0])
		}
		return nil
	}
	// Unexpected shape: leave empty rather than failing the whole record
	*t = ""
	return nil
}

// Record is an ArchivesSpace record with the fields this tool reads.
// Ancestors and Resource stay nil when the corresponding JSON fields are
// absent, which child validation treats differently from empty.
type Record struct {
	URI       string     `json:"uri"`
	Title     TitleField `json:"title"`
	Ancestors []Ref      `json:"ancestors"`
	Resource  *Ref       `json:"resource"`
}

// DisplayTitle returns the record title or the NoTitle fallback
func (r *Record) DisplayTitle() string {
	if r == nil || r.Title == "" {
		return NoTitle
	}
	return string(r.Title)
}

// HasAncestors reports whether the ancestors field was present
func (r *Record) HasAncestors() bool { return r.Ancestors != nil }

// HasResource reports whether the resource field was present
func (r *Record) HasResource() bool { return r.Resource != nil }
