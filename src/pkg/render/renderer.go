// Package render turns edit scripts into line-structured, word-highlighted
// display lines.
package render

import (
	"html"
	"strings"

	"github.com/1744154709/BatchComparisonJar/src/pkg/diff"
)

// Escaper makes a raw text fragment safe for presentation.
type Escaper func(string) string

// Option configures a Renderer.
type Option func(*Renderer)

// WithEscaper overrides the default HTML escaping.
func WithEscaper(e Escaper) Option {
	return func(r *Renderer) {
		r.escape = e
	}
}

// Renderer renders visual diffs between two raw texts.
type Renderer struct {
	differ diff.Differ
	escape Escaper
}

// NewRenderer creates a renderer on top of the given edit-script primitive.
func NewRenderer(differ diff.Differ, opts ...Option) *Renderer {
	r := &Renderer{differ: differ, escape: html.EscapeString}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render diffs the raw texts and returns the display lines.
func (r *Renderer) Render(oldText, newText string) []DisplayLine {
	return r.RenderScript(r.differ.Diff(oldText, newText))
}

// RenderScript converts a character-level script into display lines.
//
// A Delete run immediately followed by an Insert run is a paired replacement:
// it is re-diffed at word level and the differing words are highlighted.
// Lines that changed are grouped into blocks, deletions first, and every
// unchanged line pair is emitted as context.
func (r *Renderer) RenderScript(script diff.Script) []DisplayLine {
	b := &builder{escape: r.escape}
	for i := 0; i < len(script); i++ {
		e := script[i]
		switch {
		case e.Op == diff.OpDelete && i+1 < len(script) && script[i+1].Op == diff.OpInsert:
			b.pair(r.differ.DiffWords(e.Text, script[i+1].Text))
			i++
		case e.Op == diff.OpDelete:
			b.feed(&b.old, &b.pendingOld, e.Text, HighlightDelete, true)
		case e.Op == diff.OpInsert:
			b.feed(&b.new, &b.pendingNew, e.Text, HighlightInsert, true)
		default:
			b.equal(e.Text, false)
		}
	}
	b.finish()
	return b.out
}

type piece struct {
	raw string
	hl  Highlight
	// soft highlights only apply when the line also holds unchanged text
	soft bool
}

// lineBuf collects the pieces of the line currently being built on one side.
type lineBuf struct {
	pieces  []piece
	changed bool
}

func (l *lineBuf) add(p piece) {
	if p.raw != "" {
		l.pieces = append(l.pieces, p)
	}
}

func (l *lineBuf) empty() bool { return len(l.pieces) == 0 }

func (l *lineBuf) text() string {
	var sb strings.Builder
	for _, p := range l.pieces {
		sb.WriteString(p.raw)
	}
	return sb.String()
}

func (l *lineBuf) take() lineBuf {
	out := *l
	*l = lineBuf{}
	return out
}

type builder struct {
	escape     Escaper
	old, new   lineBuf
	pendingOld []lineBuf
	pendingNew []lineBuf
	oldNo      int
	newNo      int
	out        []DisplayLine
}

// feed appends a one-sided run, completing a line at every newline.
func (b *builder) feed(cur *lineBuf, pending *[]lineBuf, text string, hl Highlight, soft bool) {
	parts := strings.Split(text, "\n")
	last := len(parts) - 1
	for i, p := range parts {
		if p != "" {
			cur.add(piece{raw: p, hl: hl, soft: soft})
			cur.changed = true
		}
		if i < last {
			cur.changed = true
			*pending = append(*pending, cur.take())
		}
	}
}

// equal appends text present on both sides. Inside a paired replacement the
// lines it touches are changed lines.
func (b *builder) equal(text string, inPair bool) {
	parts := strings.Split(text, "\n")
	last := len(parts) - 1
	for i, p := range parts {
		if p != "" {
			b.old.add(piece{raw: p})
			b.new.add(piece{raw: p})
			if inPair {
				b.old.changed = true
				b.new.changed = true
			}
		}
		if i < last {
			if inPair {
				b.old.changed = true
				b.new.changed = true
			}
			b.completeBoth()
		}
	}
}

func (b *builder) pair(words diff.Script) {
	for _, w := range words {
		switch w.Op {
		case diff.OpDelete:
			b.feed(&b.old, &b.pendingOld, w.Text, HighlightDelete, false)
		case diff.OpInsert:
			b.feed(&b.new, &b.pendingNew, w.Text, HighlightInsert, false)
		default:
			b.equal(w.Text, true)
		}
	}
}

func (b *builder) completeBoth() {
	o, n := b.old.take(), b.new.take()
	if !o.changed && !n.changed && o.text() == n.text() {
		b.flush()
		b.oldNo++
		b.newNo++
		b.out = append(b.out, b.line(OpContext, b.oldNo, b.newNo, o))
		return
	}
	b.pendingOld = append(b.pendingOld, o)
	b.pendingNew = append(b.pendingNew, n)
}

// finish completes unterminated last lines. A side with nothing after its
// final newline emits no extra line.
func (b *builder) finish() {
	switch {
	case !b.old.empty() && !b.new.empty():
		b.completeBoth()
	case !b.old.empty():
		b.pendingOld = append(b.pendingOld, b.old.take())
	case !b.new.empty():
		b.pendingNew = append(b.pendingNew, b.new.take())
	}
	b.flush()
}

func (b *builder) flush() {
	for _, l := range b.pendingOld {
		b.oldNo++
		b.out = append(b.out, b.line(OpDelete, b.oldNo, 0, l))
	}
	for _, l := range b.pendingNew {
		b.newNo++
		b.out = append(b.out, b.line(OpInsert, 0, b.newNo, l))
	}
	b.pendingOld = b.pendingOld[:0]
	b.pendingNew = b.pendingNew[:0]
}

func (b *builder) line(op Op, oldNo, newNo int, l lineBuf) DisplayLine {
	plain := false
	for _, p := range l.pieces {
		if p.hl == HighlightNone {
			plain = true
			break
		}
	}

	var segs []Segment
	var raw strings.Builder
	cur := HighlightNone
	emit := func() {
		if raw.Len() == 0 {
			return
		}
		segs = append(segs, Segment{Raw: raw.String(), Text: b.escape(raw.String()), Highlight: cur})
		raw.Reset()
	}
	for _, p := range l.pieces {
		hl := p.hl
		if p.soft && !plain {
			hl = HighlightNone
		}
		if hl != cur {
			emit()
			cur = hl
		}
		raw.WriteString(p.raw)
	}
	emit()

	return DisplayLine{Op: op, OldLine: oldNo, NewLine: newNo, Segments: segs}
}
