package template

// GetDefaultReportTemplate returns the default HTML report template.
// DiffLine.HTML is already escaped and is emitted through "raw".
func GetDefaultReportTemplate() string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2em; color: #24292e; }
.meta { color: #586069; }
.summary { border-collapse: collapse; margin: 1em 0; }
.summary td, .summary th { border: 1px solid #d1d5da; padding: 4px 12px; text-align: left; }
.jar-header { background: #f1f8ff; border: 1px solid #c8e1ff; padding: 6px 10px; margin-top: 2em; font-weight: bold; }
.class-header { font-size: 1em; margin: 1em 0 0.3em 0; }
.notice { color: #586069; margin: 0.2em 0; }
pre { background: #fafbfc; border: 1px solid #e1e4e8; padding: 6px; overflow-x: auto; margin: 0; }
pre.error { background: #fff5f5; border-color: #f5c6cb; }
.diff-line { display: flex; white-space: pre; font-family: SFMono-Regular, Consolas, monospace; font-size: 12px; }
.line-num { width: 4em; color: #959da5; text-align: right; padding-right: 8px; user-select: none; }
.diff-op { width: 1.5em; user-select: none; }
.diff-delete { background: #ffeef0; }
.diff-insert { background: #e6ffed; }
.highlight-delete { background: #fdb8c0; }
.highlight-insert { background: #acf2bd; }
.empty { color: #28a745; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Old: <code>{{.OldLabel}}</code> &rarr; New: <code>{{.NewLabel}}</code><br>
Generated {{.Timestamp.Format "2006-01-02 15:04:05"}} &middot; run <code>{{.RunID}}</code></p>
{{if eq .View "main"}}
<table class="summary">
<tr><th>Added</th><th>Deleted</th><th>Modified</th><th>Unchanged</th></tr>
<tr><td>{{.Summary.Added}}</td><td>{{.Summary.Deleted}}</td><td>{{.Summary.Modified}}</td><td>{{.Summary.Unchanged}}</td></tr>
</table>
<p class="meta">Logical changes: {{.Summary.Logical}} &middot; Non-logical changes: {{.Summary.NonLogical}} &middot; Errors: {{.Summary.Errors}}</p>
{{end}}
{{if not .Archives}}
<p class="empty">No differences of this category</p>
{{end}}
{{range .Archives}}
<div class="jar-header">JAR: {{.Name}} | Status: {{.Outcome}}</div>
{{range .Records}}
<h3 class="class-header">Class: {{.Label}} ({{.Kind}})</h3>
{{if .IsError}}
<pre class="error">{{range .Lines}}{{.}}
{{end}}</pre>
{{else}}
{{range .Lines}}<p class="notice">{{.}}</p>
{{end}}
{{if .DiffLines}}<pre>{{range .DiffLines}}<div class="diff-line diff-{{.Op}}"><span class="line-num">{{if eq .Op "insert"}}{{.NewLine}}{{else}}{{.OldLine}}{{end}}</span><span class="diff-op">{{if eq .Op "insert"}}+{{else if eq .Op "delete"}}-{{else}} {{end}}</span><span class="diff-content">{{raw .HTML}}</span></div>{{end}}</pre>{{end}}
{{end}}
{{end}}
{{end}}
</body>
</html>
`
}

// GetDefaultSummaryTemplate returns the default Markdown summary template
func GetDefaultSummaryTemplate() string {
	return ToolCommentSignature + `

# 🔍 {{.Title}}

**Timestamp:** {{.Timestamp.Format "2006-01-02 15:04:05"}}  
**Old:** ` + "`{{.OldLabel}}`" + ` → **New:** ` + "`{{.NewLabel}}`" + `

---

## 📊 Summary

| Added | Deleted | Modified | Unchanged |
|-------|---------|----------|-----------|
| {{.Summary.Added}} | {{.Summary.Deleted}} | {{.Summary.Modified}} | {{.Summary.Unchanged}} |

**Logical changes:** {{.Summary.Logical}} | **Non-logical changes:** {{.Summary.NonLogical}}{{if gt .Summary.Errors 0}} | 💥 **Errors:** {{.Summary.Errors}}{{end}}

---

## 📦 Archive Changes

{{if .Archives}}
{{range .Archives}}
### {{.Name}} ({{.Outcome}})

{{range .Records}}
{{if .IsError}}
💥 **{{.Label}}**

` + "```" + `
{{join .Lines "\n"}}
` + "```" + `
{{else if .Patch}}
<details>
<summary>{{.Label}} (+{{.AddedLineCount}} -{{.DeletedLineCount}})</summary>

` + "```diff" + `
{{.Patch}}
` + "```" + `

</details>
{{else}}
{{range .Lines}}- {{.}}
{{end}}
{{end}}
{{end}}
{{end}}
{{else}}
✅ No differences of this category
{{end}}

{{template "policy" .PolicyEvaluation}}

---

_Generated by jardiff_
`
}

// GetDefaultPolicyTemplate returns the default policy section template.
// Its data is a *models.PolicyEvaluation and may be nil.
func GetDefaultPolicyTemplate() string {
	return `{{if .}}
---

## 🛡️ Release Gate

**{{.Counts.Success}}** passed | **{{.Counts.Failed}}** failed | **{{.Counts.Errored}}** errored

{{.Summary}}
{{if .Matrix.BlockingPolicies}}
### 🚫 Blocking
{{range .Matrix.BlockingPolicies}}
- **{{.PolicyName}}** ({{.Status}}){{range .FailMessages}}
  - {{.}}{{end}}
{{end}}{{end}}
{{if .Matrix.WarningPolicies}}
### ⚠️ Warning
{{range .Matrix.WarningPolicies}}
- **{{.PolicyName}}** ({{.Status}}){{range .FailMessages}}
  - {{.}}{{end}}
{{end}}{{end}}
{{if .Matrix.RecommendPolicies}}
### 💡 Recommend
{{range .Matrix.RecommendPolicies}}
- **{{.PolicyName}}** ({{.Status}}){{range .FailMessages}}
  - {{.}}{{end}}
{{end}}{{end}}
{{if .Matrix.OverriddenPolicies}}
### ⏭️ Overridden
{{range .Matrix.OverriddenPolicies}}
- **{{.PolicyName}}** ({{.Enforcement}})
{{end}}{{end}}
{{if .Matrix.ErroredPolicies}}
### 💥 Errored
{{range .Matrix.ErroredPolicies}}
- **{{.PolicyName}}**{{range .FailMessages}}
  - {{.}}{{end}}
{{end}}{{end}}
{{end}}`
}
