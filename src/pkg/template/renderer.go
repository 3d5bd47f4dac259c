package template

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	log "github.com/sirupsen/logrus"

	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
)

var logger = log.WithField("package", "template")

// ToolCommentSignature marks PR comments written by jardiff so they can be updated in place.
const ToolCommentSignature = "<!-- jardiff: auto-generated comment, please do not remove -->"

const (
	REPORT_TEMPLATE_FILE  = "report.html.tmpl"
	SUMMARY_TEMPLATE_FILE = "summary.md.tmpl"
	POLICY_TEMPLATE_FILE  = "policy.md.tmpl"
)

// Renderer handles template rendering
type Renderer struct {
	funcMap     map[string]any
	templateDir string
}

// NewRenderer creates a new template renderer. Templates found in templateDir
// replace the embedded defaults one file at a time; an empty dir uses the defaults.
func NewRenderer(templateDir string) *Renderer {
	return &Renderer{
		templateDir: templateDir,
		funcMap: map[string]any{
			"gt":   func(a, b int) bool { return a > b },
			"join": strings.Join,
			"raw":  func(s string) htmltemplate.HTML { return htmltemplate.HTML(s) },
		},
	}
}

// RenderReport renders one HTML report view.
func (r *Renderer) RenderReport(data *models.ReportData) (string, error) {
	content, err := r.load(REPORT_TEMPLATE_FILE, GetDefaultReportTemplate())
	if err != nil {
		return "", err
	}
	tmpl, err := htmltemplate.New("report").Funcs(r.funcMap).Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute report template: %w", err)
	}
	return buf.String(), nil
}

// RenderSummary renders the Markdown summary, including the policy section
// as the named template "policy".
func (r *Renderer) RenderSummary(data *models.ReportData) (string, error) {
	tmpl := template.New("").Funcs(r.funcMap)

	policyContent, err := r.load(POLICY_TEMPLATE_FILE, GetDefaultPolicyTemplate())
	if err != nil {
		return "", err
	}
	if _, err := tmpl.New("policy").Parse(policyContent); err != nil {
		return "", fmt.Errorf("failed to parse policy template: %w", err)
	}

	summaryContent, err := r.load(SUMMARY_TEMPLATE_FILE, GetDefaultSummaryTemplate())
	if err != nil {
		return "", err
	}
	mainTmpl, err := tmpl.New("summary").Parse(summaryContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse summary template: %w", err)
	}

	var buf bytes.Buffer
	if err := mainTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Render renders a text template file with the provided data
func (r *Renderer) Render(templatePath string, data any) (string, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return r.RenderString(string(content), data)
}

// RenderString renders a text template string with the provided data
func (r *Renderer) RenderString(templateStr string, data any) (string, error) {
	tmpl, err := template.New("template").Funcs(r.funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) load(name, fallback string) (string, error) {
	if r.templateDir == "" {
		return fallback, nil
	}
	path := filepath.Join(r.templateDir, name)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.WithField("template", name).Debug("custom template not found, using default")
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(content), nil
}
