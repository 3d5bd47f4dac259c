package policy

import (
	"fmt"

	"github.com/1744154709/BatchComparisonJar/src/pkg/config"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
)

// Reporter generates release gate reports
type Reporter struct{}

// NewReporter creates a new policy reporter
func NewReporter() *Reporter {
	return &Reporter{}
}

// GenerateReport groups policy results by enforcement level for the summary.
// Errored policies and policies not in effect get their own groups, and so
// do overridden failures.
func (r *Reporter) GenerateReport(result *config.EvaluationResult, enforcement *config.EnforcementResult) *models.PolicyEvaluation {
	report := &models.PolicyEvaluation{
		Counts: models.PolicyCounts{
			Success: result.PassedPolicies,
			Failed:  result.FailedPolicies,
			Errored: result.ErroredPolicies,
		},
	}
	if enforcement != nil {
		report.Summary = enforcement.Summary
	}

	for _, pr := range result.PolicyResults {
		entry := models.PolicyResult{
			PolicyName:   pr.PolicyName,
			Enforcement:  pr.Level,
			Status:       pr.Status,
			FailMessages: make([]string, 0, len(pr.Violations)),
		}
		for _, v := range pr.Violations {
			entry.FailMessages = append(entry.FailMessages, fmt.Sprintf("%s: %s", v.Archive, v.Message))
		}

		m := &report.Matrix
		switch {
		case pr.Status == POLICY_STATUS_ERROR:
			entry.FailMessages = append(entry.FailMessages, pr.Error)
			m.ErroredPolicies = append(m.ErroredPolicies, entry)
		case pr.Level == POLICY_LEVEL_DISABLED:
			entry.Status = "Not In Effect"
			m.NotInEffectPolicies = append(m.NotInEffectPolicies, entry)
		case pr.Overridden && pr.Status == POLICY_STATUS_FAIL:
			entry.Status = "Overridden"
			m.OverriddenPolicies = append(m.OverriddenPolicies, entry)
		case pr.Level == POLICY_LEVEL_BLOCK:
			m.BlockingPolicies = append(m.BlockingPolicies, entry)
		case pr.Level == POLICY_LEVEL_WARNING:
			m.WarningPolicies = append(m.WarningPolicies, entry)
		default:
			m.RecommendPolicies = append(m.RecommendPolicies, entry)
		}
	}

	return report
}
