package runner

import (
	"github.com/1744154709/BatchComparisonJar/src/pkg/config"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
	"github.com/1744154709/BatchComparisonJar/src/pkg/report"
)

type RunnerInterface interface {
	// Initialize the runner with necessary context and data
	Initialize() error

	// Scan both directories into name -> path archive sets
	Scan() (*ArchiveSets, error)

	// Compare the archive sets
	Compare(sets *ArchiveSets) ([]models.ComparisonResult, error)

	// Evaluate the release gate, nil results when no policy is configured
	Evaluate(results []models.ComparisonResult) (*models.PolicyEvaluation, *config.EnforcementResult, error)

	// Main routine to process the runner
	Process() error

	// Handling the export
	Output(out *RunOutput) error
}

// ArchiveSets are the scanned archives of both sides
type ArchiveSets struct {
	Old map[string]string
	New map[string]string
}

// Shared counts the archive names present on both sides
func (s *ArchiveSets) Shared() int {
	n := 0
	for name := range s.Old {
		if _, ok := s.New[name]; ok {
			n++
		}
	}
	return n
}

// RunOutput is everything a run produces for the output phase
type RunOutput struct {
	Builder     *report.Builder
	Results     []models.ComparisonResult
	Main        *models.ReportData
	NonLogical  *models.ReportData
	Summary     string
	Enforcement *config.EnforcementResult
}
