package render

import "strings"

// Op tags a display line.
type Op int

const (
	OpContext Op = iota
	OpDelete
	OpInsert
)

func (o Op) String() string {
	switch o {
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	default:
		return "context"
	}
}

// Marker returns the unified-diff prefix for the op.
func (o Op) Marker() string {
	switch o {
	case OpDelete:
		return "-"
	case OpInsert:
		return "+"
	default:
		return " "
	}
}

// Highlight marks a sub-span of a line.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightDelete
	HighlightInsert
)

// Class returns the CSS class used for the span, or "" for HighlightNone.
func (h Highlight) Class() string {
	switch h {
	case HighlightDelete:
		return "highlight-delete"
	case HighlightInsert:
		return "highlight-insert"
	default:
		return ""
	}
}

// Segment is one piece of a display line.
type Segment struct {
	// Raw is the original source text.
	Raw string
	// Text is Raw after escaping.
	Text      string
	Highlight Highlight
}

// DisplayLine is one rendered line of a visual diff.
// OldLine and NewLine are 1-based; zero means the line does not exist on that side.
type DisplayLine struct {
	Op       Op
	OldLine  int
	NewLine  int
	Segments []Segment
}

// Text returns the raw line content without markup.
func (l DisplayLine) Text() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(s.Raw)
	}
	return sb.String()
}

// HTML returns the escaped line with highlighted spans wrapped in markup.
func (l DisplayLine) HTML() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		if class := s.Highlight.Class(); class != "" {
			sb.WriteString("<span class='")
			sb.WriteString(class)
			sb.WriteString("'>")
			sb.WriteString(s.Text)
			sb.WriteString("</span>")
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Highlighted reports whether any segment carries a highlight.
func (l DisplayLine) Highlighted() bool {
	for _, s := range l.Segments {
		if s.Highlight != HighlightNone {
			return true
		}
	}
	return false
}

// Stats counts inserted and deleted lines.
func Stats(lines []DisplayLine) (added, deleted int) {
	for _, l := range lines {
		switch l.Op {
		case OpInsert:
			added++
		case OpDelete:
			deleted++
		}
	}
	return added, deleted
}
