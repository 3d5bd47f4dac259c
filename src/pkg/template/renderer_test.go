package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
)

func sampleData(view string) *models.ReportData {
	return &models.ReportData{
		RunID:     "run-1",
		Title:     "Release <1.2>",
		View:      view,
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		OldLabel:  "old",
		NewLabel:  "new",
		Summary:   models.OutcomeCounts{Added: 1, Modified: 1, Unchanged: 4, Logical: 1, Errors: 1},
		Archives: []models.ArchiveSection{{
			Name:    "app.jar",
			Outcome: "MODIFIED",
			Records: []models.RecordSection{
				{
					Label: "com.example.A",
					Kind:  "LOGICAL_CHANGE",
					Lines: []string{"Logical change detected in com.example.A"},
					DiffLines: []models.DiffLine{
						{Op: "context", OldLine: 1, NewLine: 1, HTML: "a", Text: "a"},
						{Op: "delete", OldLine: 2, HTML: "x &lt; <span class='highlight-delete'>b</span>", Text: "x < b"},
						{Op: "insert", NewLine: 2, HTML: "x &lt; <span class='highlight-insert'>c</span>", Text: "x < c"},
					},
					Patch:            "--- old/com.example.A\n+++ new/com.example.A\n@@ -1,2 +1,2 @@\n a\n-x < b\n+x < c\n",
					AddedLineCount:   1,
					DeletedLineCount: 1,
				},
				{
					Label: "com.example.B",
					Kind:  "ERROR",
					Lines: []string{"[decompile failed] com.example.B", "    old: bad <init>"},
				},
			},
		}},
	}
}

func TestRenderer_RenderReport(t *testing.T) {
	r := NewRenderer("")

	out, err := r.RenderReport(sampleData("main"))
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Release &lt;1.2&gt;</title>")
	assert.Contains(t, out, `<table class="summary">`)
	assert.Contains(t, out, "JAR: app.jar | Status: MODIFIED")
	assert.Contains(t, out, `<div class="diff-line diff-delete"><span class="line-num">2</span><span class="diff-op">-</span><span class="diff-content">x &lt; <span class='highlight-delete'>b</span></span></div>`)
	assert.Contains(t, out, `<span class="line-num">2</span><span class="diff-op">+</span>`)
	assert.Contains(t, out, "old: bad &lt;init&gt;")
	assert.NotContains(t, out, "No differences of this category")
}

func TestRenderer_RenderReport_EmptyNonLogical(t *testing.T) {
	r := NewRenderer("")
	data := sampleData("non_logical")
	data.Archives = nil

	out, err := r.RenderReport(data)
	require.NoError(t, err)
	assert.Contains(t, out, "No differences of this category")
	assert.NotContains(t, out, `<table class="summary">`)
}

func TestRenderer_RenderSummary(t *testing.T) {
	r := NewRenderer("")

	t.Run("without gate", func(t *testing.T) {
		out, err := r.RenderSummary(sampleData("main"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, ToolCommentSignature))
		assert.Contains(t, out, "| 1 | 0 | 1 | 4 |")
		assert.Contains(t, out, "<summary>com.example.A (+1 -1)</summary>")
		assert.Contains(t, out, "```diff\n--- old/com.example.A")
		assert.Contains(t, out, "[decompile failed] com.example.B\n    old: bad <init>")
		assert.NotContains(t, out, "Release Gate")
	})

	t.Run("with gate", func(t *testing.T) {
		data := sampleData("main")
		data.PolicyEvaluation = &models.PolicyEvaluation{
			Counts:  models.PolicyCounts{Success: 1, Failed: 1},
			Summary: "1 blocking policy failure(s)",
			Matrix: models.PolicyMatrix{
				BlockingPolicies: []models.PolicyResult{{
					PolicyName:   "no-errors",
					Enforcement:  "BLOCK",
					Status:       "FAIL",
					FailMessages: []string{"app.jar: decompilation failed"},
				}},
			},
		}
		out, err := r.RenderSummary(data)
		require.NoError(t, err)
		assert.Contains(t, out, "Release Gate")
		assert.Contains(t, out, "**1** passed | **1** failed | **0** errored")
		assert.Contains(t, out, "- **no-errors** (FAIL)\n  - app.jar: decompilation failed")
	})
}

func TestRenderer_CustomTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SUMMARY_TEMPLATE_FILE),
		[]byte(`custom {{.Title}} {{template "policy" .PolicyEvaluation}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, REPORT_TEMPLATE_FILE),
		[]byte(`<p>{{.Title}}</p>`), 0o644))

	r := NewRenderer(dir)

	summary, err := r.RenderSummary(sampleData("main"))
	require.NoError(t, err)
	assert.Equal(t, "custom Release <1.2> ", summary)

	report, err := r.RenderReport(sampleData("main"))
	require.NoError(t, err)
	assert.Equal(t, "<p>Release &lt;1.2&gt;</p>", report)
}

func TestRenderer_InvalidTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, REPORT_TEMPLATE_FILE), []byte(`{{.Title`), 0o644))

	_, err := NewRenderer(dir).RenderReport(sampleData("main"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse report template")
}

func TestRenderer_RenderString(t *testing.T) {
	r := NewRenderer("")

	tests := []struct {
		name     string
		template string
		data     any
		want     string
		wantErr  bool
	}{
		{"gt true", `{{if gt .N 0}}yes{{else}}no{{end}}`, map[string]int{"N": 2}, "yes", false},
		{"gt false", `{{if gt .N 0}}yes{{else}}no{{end}}`, map[string]int{"N": 0}, "no", false},
		{"join", `{{join .L ", "}}`, map[string][]string{"L": {"a", "b"}}, "a, b", false},
		{"parse error", `{{if}}`, nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderString(tt.template, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RenderString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("RenderString() = %q, want %q", got, tt.want)
			}
		})
	}
}
