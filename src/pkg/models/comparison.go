package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GeneralLabel tags archive-level notes that do not belong to a single unit.
const GeneralLabel = "General Info"

// Outcome is the comparison status of one archive name across both sides.
type Outcome int

const (
	// OutcomeDeleted means the archive exists only on the old side.
	OutcomeDeleted Outcome = iota + 1
	// OutcomeAdded means the archive exists only on the new side.
	OutcomeAdded
	// OutcomeModified means both sides exist and at least one change record was retained.
	OutcomeModified
	// OutcomeUnchanged means both sides exist and no change record was retained.
	OutcomeUnchanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "DELETED"
	case OutcomeAdded:
		return "ADDED"
	case OutcomeModified:
		return "MODIFIED"
	case OutcomeUnchanged:
		return "UNCHANGED"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ChangeKind classifies a single detected difference.
type ChangeKind int

const (
	// KindLogical is a meaningful code change.
	KindLogical ChangeKind = iota + 1
	// KindNonLogical is a difference made only of decompiler/compiler artifacts.
	KindNonLogical
	// KindError means the comparison of the unit or archive failed.
	KindError
)

func (k ChangeKind) String() string {
	switch k {
	case KindLogical:
		return "LOGICAL_CHANGE"
	case KindNonLogical:
		return "NON_LOGICAL_CHANGE"
	case KindError:
		return "ERROR"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Archive identifies one archive name and where it lives on each side.
// An empty path means the archive is absent on that side.
type Archive struct {
	Name    string `json:"name"`
	OldPath string `json:"oldPath,omitempty"`
	NewPath string `json:"newPath,omitempty"`
}

func (a Archive) HasOld() bool { return a.OldPath != "" }
func (a Archive) HasNew() bool { return a.NewPath != "" }

// ChangeRecord describes one difference found inside an archive.
// It is immutable once constructed.
type ChangeRecord struct {
	label     string
	kind      ChangeKind
	lines     []string
	oldSource *string
	newSource *string
}

// NewChangeRecord builds a record carrying the raw sources of both sides.
// Pass nil sources for archive-level notes.
func NewChangeRecord(label string, kind ChangeKind, lines []string, oldSource, newSource *string) ChangeRecord {
	return ChangeRecord{
		label:     label,
		kind:      kind,
		lines:     append([]string(nil), lines...),
		oldSource: copyString(oldSource),
		newSource: copyString(newSource),
	}
}

// NewNote builds an archive-level record without attached sources.
func NewNote(kind ChangeKind, lines ...string) ChangeRecord {
	return NewChangeRecord(GeneralLabel, kind, lines, nil, nil)
}

func (r ChangeRecord) Label() string    { return r.label }
func (r ChangeRecord) Kind() ChangeKind { return r.kind }

// Lines returns the human-readable notice or error detail lines.
func (r ChangeRecord) Lines() []string {
	return append([]string(nil), r.lines...)
}

// OldSource returns the raw old text and whether it is present.
func (r ChangeRecord) OldSource() (string, bool) {
	if r.oldSource == nil {
		return "", false
	}
	return *r.oldSource, true
}

// NewSource returns the raw new text and whether it is present.
func (r ChangeRecord) NewSource() (string, bool) {
	if r.newSource == nil {
		return "", false
	}
	return *r.newSource, true
}

// HasSources reports whether the record can be rendered as a visual diff.
func (r ChangeRecord) HasSources() bool {
	return r.oldSource != nil || r.newSource != nil
}

func (r ChangeRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label     string     `json:"label"`
		Kind      ChangeKind `json:"kind"`
		Lines     []string   `json:"lines,omitempty"`
		OldSource *string    `json:"oldSource,omitempty"`
		NewSource *string    `json:"newSource,omitempty"`
	}{r.label, r.kind, r.lines, r.oldSource, r.newSource})
}

func (r ChangeRecord) String() string {
	return fmt.Sprintf("%s (%s): %s", r.label, r.kind, strings.Join(r.lines, "; "))
}

// ComparisonResult is the final, immutable result for one archive name.
type ComparisonResult struct {
	archive Archive
	outcome Outcome
	records []ChangeRecord
}

func (r ComparisonResult) Archive() Archive { return r.archive }
func (r ComparisonResult) Outcome() Outcome { return r.outcome }

// Records returns a copy of the ordered change records.
func (r ComparisonResult) Records() []ChangeRecord {
	return append([]ChangeRecord(nil), r.records...)
}

// RecordsOf returns the records whose kind is one of kinds, preserving order.
func (r ComparisonResult) RecordsOf(kinds ...ChangeKind) []ChangeRecord {
	var out []ChangeRecord
	for _, rec := range r.records {
		for _, k := range kinds {
			if rec.kind == k {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// CountKind returns the number of records of the given kind.
func (r ComparisonResult) CountKind(kind ChangeKind) int {
	n := 0
	for _, rec := range r.records {
		if rec.kind == kind {
			n++
		}
	}
	return n
}

func (r ComparisonResult) MarshalJSON() ([]byte, error) {
	records := r.records
	if records == nil {
		records = []ChangeRecord{}
	}
	return json.Marshal(struct {
		Archive Archive        `json:"archive"`
		Outcome Outcome        `json:"outcome"`
		Records []ChangeRecord `json:"records"`
	}{r.archive, r.outcome, records})
}

// ResultBuilder accumulates change records during one archive comparison.
// It is not safe for concurrent use.
type ResultBuilder struct {
	archive Archive
	records []ChangeRecord
}

func NewResultBuilder(archive Archive) *ResultBuilder {
	return &ResultBuilder{archive: archive}
}

func (b *ResultBuilder) Add(records ...ChangeRecord) *ResultBuilder {
	b.records = append(b.records, records...)
	return b
}

func (b *ResultBuilder) Len() int { return len(b.records) }

// Build returns Modified when records were collected and Unchanged otherwise.
func (b *ResultBuilder) Build() ComparisonResult {
	if len(b.records) == 0 {
		return b.Unchanged()
	}
	return ComparisonResult{
		archive: b.archive,
		outcome: OutcomeModified,
		records: append([]ChangeRecord(nil), b.records...),
	}
}

// Unchanged returns an Unchanged result, discarding any collected records.
func (b *ResultBuilder) Unchanged() ComparisonResult {
	return ComparisonResult{archive: b.archive, outcome: OutcomeUnchanged}
}

// DeletedResult returns a Deleted result for an archive present only on the old side.
func DeletedResult(archive Archive) ComparisonResult {
	return ComparisonResult{archive: archive, outcome: OutcomeDeleted}
}

// AddedResult returns an Added result for an archive present only on the new side.
func AddedResult(archive Archive) ComparisonResult {
	return ComparisonResult{archive: archive, outcome: OutcomeAdded}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
