package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1744154709/BatchComparisonJar/src/pkg/diff"
)

func sideLines(lines []DisplayLine, old bool) []string {
	var out []string
	for _, l := range lines {
		if old && l.Op != OpInsert {
			out = append(out, l.Text())
		}
		if !old && l.Op != OpDelete {
			out = append(out, l.Text())
		}
	}
	return out
}

func splitRaw(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func TestRenderer_PairedReplacement(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))

	lines := r.Render("a\nb\n", "a\nc\n")
	require.Len(t, lines, 3)

	assert.Equal(t, OpContext, lines[0].Op)
	assert.Equal(t, "a", lines[0].Text())
	assert.Equal(t, 1, lines[0].OldLine)
	assert.Equal(t, 1, lines[0].NewLine)

	assert.Equal(t, OpDelete, lines[1].Op)
	assert.Equal(t, "b", lines[1].Text())
	assert.Equal(t, 2, lines[1].OldLine)
	assert.Equal(t, 0, lines[1].NewLine)
	assert.Equal(t, "<span class='highlight-delete'>b</span>", lines[1].HTML())

	assert.Equal(t, OpInsert, lines[2].Op)
	assert.Equal(t, "c", lines[2].Text())
	assert.Equal(t, 0, lines[2].OldLine)
	assert.Equal(t, 2, lines[2].NewLine)
	assert.Equal(t, "<span class='highlight-insert'>c</span>", lines[2].HTML())
}

func TestRenderer_IntraLineReplacement(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))

	lines := r.Render("x < a;\n", "x < b;\n")
	require.Len(t, lines, 2)

	assert.Equal(t, OpDelete, lines[0].Op)
	assert.Equal(t, "x < a;", lines[0].Text())
	assert.Equal(t, "x &lt; <span class='highlight-delete'>a</span>;", lines[0].HTML())

	assert.Equal(t, OpInsert, lines[1].Op)
	assert.Equal(t, "x < b;", lines[1].Text())
	assert.Equal(t, "x &lt; <span class='highlight-insert'>b</span>;", lines[1].HTML())
}

func TestRenderer_UnpairedRunsAreWholeLine(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))

	lines := r.Render("a\n", "a\nb\nc\n")
	require.Len(t, lines, 3)
	assert.Equal(t, OpContext, lines[0].Op)
	for i, want := range []string{"b", "c"} {
		l := lines[i+1]
		assert.Equal(t, OpInsert, l.Op)
		assert.Equal(t, want, l.Text())
		assert.Equal(t, i+2, l.NewLine)
		assert.False(t, l.Highlighted(), "whole inserted lines carry no spans")
	}

	lines = r.Render("a\nb\nc\n", "a\n")
	require.Len(t, lines, 3)
	assert.Equal(t, OpDelete, lines[1].Op)
	assert.Equal(t, 2, lines[1].OldLine)
	assert.Equal(t, OpDelete, lines[2].Op)
	assert.Equal(t, 3, lines[2].OldLine)
}

func TestRenderer_EscapesBeforeMarkup(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))

	lines := r.Render("<span class='x'>&amp;</span>\n", "<span class='x'>&amp;</span>\n")
	require.Len(t, lines, 1)
	assert.Equal(t, OpContext, lines[0].Op)
	assert.Equal(t, "&lt;span class=&#39;x&#39;&gt;&amp;amp;&lt;/span&gt;", lines[0].HTML())
	assert.Equal(t, "<span class='x'>&amp;</span>", lines[0].Text())
}

func TestRenderer_CustomEscaper(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0), WithEscaper(strings.ToUpper))

	lines := r.Render("abc\n", "abd\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, strings.ToUpper(l.Text()), stripSpans(l.HTML()))
	}
}

func stripSpans(s string) string {
	s = strings.ReplaceAll(s, "<span class='highlight-delete'>", "")
	s = strings.ReplaceAll(s, "<span class='highlight-insert'>", "")
	return strings.ReplaceAll(s, "</span>", "")
}

func TestRenderer_TrailingNewline(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))

	lines := r.Render("a\nb", "a\nb\n")
	assert.Equal(t, []string{"a", "b"}, sideLines(lines, true))
	assert.Equal(t, []string{"a", "b"}, sideLines(lines, false))

	lines = r.Render("", "")
	assert.Empty(t, lines)
}

func TestRenderer_RoundTrip(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))

	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"identical", "class A {\n}\n", "class A {\n}\n"},
		{"from empty", "", "line1\nline2\n"},
		{"to empty", "line1\nline2\n", ""},
		{"no trailing newline", "a\nb", "a\nc"},
		{"blank lines", "a\n\n\nb\n", "a\n\nb\n\n"},
		{"many edits", "int x = 1;\nint y = 2;\nreturn x + y;\n", "int x = 10;\nint z = 2;\nreturn x * z;\n"},
		{"bridge renumbering", "  // $FF: synthetic method\n  static int access$000(A a) {\n    return a.x;\n  }\n", "  // $FF: synthetic method\n  static int access$100(A a) {\n    return a.x;\n  }\n"},
		{"method moved", "void a() {}\nvoid b() {}\nvoid c() {}\n", "void c() {}\nvoid a() {}\nvoid b() {}\n"},
		{"unicode", "名字 = \"旧\";\n", "名字 = \"新\";\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := r.Render(tt.old, tt.new)
			assert.Equal(t, splitRaw(tt.old), sideLines(lines, true))
			assert.Equal(t, splitRaw(tt.new), sideLines(lines, false))

			oldNo, newNo := 0, 0
			for _, l := range lines {
				switch l.Op {
				case OpContext:
					oldNo++
					newNo++
					assert.Equal(t, oldNo, l.OldLine)
					assert.Equal(t, newNo, l.NewLine)
				case OpDelete:
					oldNo++
					assert.Equal(t, oldNo, l.OldLine)
					assert.Zero(t, l.NewLine)
				case OpInsert:
					newNo++
					assert.Equal(t, newNo, l.NewLine)
					assert.Zero(t, l.OldLine)
				}
			}
		})
	}
}

func TestRenderScript_MixedUnpairedHighlights(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))

	lines := r.RenderScript(diff.Script{
		{Op: diff.OpEqual, Text: "foo("},
		{Op: diff.OpInsert, Text: "bar"},
		{Op: diff.OpEqual, Text: ");\n"},
	})
	require.Len(t, lines, 2)
	assert.Equal(t, "foo();", lines[0].Text())
	assert.False(t, lines[0].Highlighted())
	assert.Equal(t, "foo(<span class='highlight-insert'>bar</span>);", lines[1].HTML())
}

func TestStats(t *testing.T) {
	r := NewRenderer(diff.NewDiffer(0))
	added, deleted := Stats(r.Render("a\nb\n", "a\nc\nd\n"))
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, deleted)
}
