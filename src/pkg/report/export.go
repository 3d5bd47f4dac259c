package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
)

// EXPORT_FILE_NAME is the machine-readable report written with --enable-export-report
const EXPORT_FILE_NAME = "report.json"

// Export is the machine-readable form of a run
type Export struct {
	RunID     string                    `json:"runId"`
	Timestamp time.Time                 `json:"timestamp"`
	OldLabel  string                    `json:"old"`
	NewLabel  string                    `json:"new"`
	Summary   models.OutcomeCounts      `json:"summary"`
	Results   []models.ComparisonResult `json:"results"`
}

// NewExport collects the results of a run for export.
func (b *Builder) NewExport(results []models.ComparisonResult) *Export {
	if results == nil {
		results = []models.ComparisonResult{}
	}
	return &Export{
		RunID:     b.runID,
		Timestamp: b.timestamp,
		OldLabel:  b.opts.OldLabel,
		NewLabel:  b.opts.NewLabel,
		Summary:   b.Summarize(results),
		Results:   results,
	}
}

// WriteJSON writes the export to dir/report.json and returns the path.
func WriteJSON(dir string, export *Export) (string, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, EXPORT_FILE_NAME)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
