package diff

import (
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the operation of one edit run.
type Op int8

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return "equal"
	}
}

// Edit is a single run of an edit script.
type Edit struct {
	Op   Op
	Text string
}

// Script is an ordered edit script covering both inputs end to end.
type Script []Edit

// AllEqual reports whether the script contains no insertions or deletions.
// An empty script (two empty inputs) is all-equal.
func (s Script) AllEqual() bool {
	for _, e := range s {
		if e.Op != OpEqual {
			return false
		}
	}
	return true
}

// Old reassembles the old-side text from the script.
func (s Script) Old() string {
	return s.side(OpDelete)
}

// New reassembles the new-side text from the script.
func (s Script) New() string {
	return s.side(OpInsert)
}

func (s Script) side(keep Op) string {
	n := 0
	for _, e := range s {
		if e.Op == OpEqual || e.Op == keep {
			n += len(e.Text)
		}
	}
	buf := make([]byte, 0, n)
	for _, e := range s {
		if e.Op == OpEqual || e.Op == keep {
			buf = append(buf, e.Text...)
		}
	}
	return string(buf)
}

// Differ computes edit scripts between two texts.
type Differ interface {
	// Diff computes a character-level script with semantic cleanup.
	Diff(a, b string) Script
	// DiffWords computes a word-level script with semantic cleanup.
	DiffWords(a, b string) Script
}

// DMPDiffer implements Differ on top of diff-match-patch.
type DMPDiffer struct {
	timeout time.Duration
}

// Ensure DMPDiffer implements Differ
var _ Differ = (*DMPDiffer)(nil)

// DefaultTimeout bounds the time spent refining a single script.
const DefaultTimeout = time.Second

// NewDiffer creates a new diff-match-patch backed differ.
// A zero timeout means DefaultTimeout; a negative one disables the limit.
func NewDiffer(timeout time.Duration) *DMPDiffer {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		timeout = 0
	}
	return &DMPDiffer{timeout: timeout}
}

func (d *DMPDiffer) engine() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = d.timeout
	return dmp
}

// Diff computes a character-level edit script with semantic cleanup.
func (d *DMPDiffer) Diff(a, b string) Script {
	dmp := d.engine()
	diffs := dmp.DiffMain(a, b, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return fromDMP(diffs)
}

// DiffWords computes an edit script whose runs never split a word.
func (d *DMPDiffer) DiffWords(a, b string) Script {
	dmp := d.engine()
	ra, rb, table, ok := tokensToRunes(tokenize(a), tokenize(b))
	if !ok {
		return d.Diff(a, b)
	}
	diffs := dmp.DiffMainRunes(ra, rb, false)
	diffs = runesToTokens(diffs, table)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return fromDMP(diffs)
}

func fromDMP(diffs []diffmatchpatch.Diff) Script {
	out := make(Script, 0, len(diffs))
	for _, df := range diffs {
		if df.Text == "" {
			continue
		}
		var op Op
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		default:
			op = OpEqual
		}
		// merge adjacent runs of the same op
		if n := len(out); n > 0 && out[n-1].Op == op {
			out[n-1].Text += df.Text
			continue
		}
		out = append(out, Edit{Op: op, Text: df.Text})
	}
	return out
}
