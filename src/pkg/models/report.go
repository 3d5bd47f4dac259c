package models

import "time"

// ReportData represents the complete data of one report view
type ReportData struct {
	RunID     string
	Title     string
	View      string // "main" or "non_logical"
	Timestamp time.Time
	OldLabel  string
	NewLabel  string

	Summary  OutcomeCounts
	Archives []ArchiveSection

	// Policy evaluation results, nil when no gate is configured
	PolicyEvaluation *PolicyEvaluation
}

// OutcomeCounts counts archives by outcome and records by kind
type OutcomeCounts struct {
	Added      int
	Deleted    int
	Modified   int
	Unchanged  int
	Logical    int
	NonLogical int
	Errors     int
}

// ArchiveSection is one archive of a report view
type ArchiveSection struct {
	Name    string
	OldPath string
	NewPath string
	Outcome string
	Records []RecordSection
}

// RecordSection is one change record of a report view
type RecordSection struct {
	Label string
	Kind  string
	// Lines holds notices and error details
	Lines []string
	// DiffLines is the rendered visual diff, empty for notes and errors
	DiffLines []DiffLine
	// Patch is a unified diff of the raw sources
	Patch            string
	AddedLineCount   int
	DeletedLineCount int
}

// IsError reports whether the record describes a failure
func (r RecordSection) IsError() bool { return r.Kind == KindError.String() }

// DiffLine is one line of a visual diff, ready for presentation
type DiffLine struct {
	Op      string // "context", "insert", "delete"
	OldLine int    // 0 when absent
	NewLine int    // 0 when absent
	// HTML is escaped content with highlight spans
	HTML string
	// Text is the raw content
	Text string
}

// PolicyEvaluation represents the overall policy evaluation results
type PolicyEvaluation struct {
	Counts PolicyCounts
	Matrix PolicyMatrix
	// Summary is the enforcement decision, e.g. "1 blocking policy failure(s)"
	Summary string
}

// PolicyCounts represents the count of policies by status
type PolicyCounts struct {
	Success int
	Failed  int
	Errored int
}

// PolicyMatrix represents the detailed policy evaluation matrix
type PolicyMatrix struct {
	// Policies grouped by enforcement level
	BlockingPolicies    []PolicyResult
	WarningPolicies     []PolicyResult
	RecommendPolicies   []PolicyResult
	OverriddenPolicies  []PolicyResult
	NotInEffectPolicies []PolicyResult
	ErroredPolicies     []PolicyResult
}

// PolicyResult represents the result of a single policy evaluation
type PolicyResult struct {
	PolicyName   string
	Enforcement  string // "BLOCK", "WARNING", "RECOMMEND"
	Status       string // "Overridden", "Not In Effect", etc.
	FailMessages []string
}
