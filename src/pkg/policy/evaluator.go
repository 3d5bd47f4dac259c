package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/rego"
	log "github.com/sirupsen/logrus"

	"github.com/1744154709/BatchComparisonJar/src/pkg/config"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
)

var logger = log.WithField("package", "policy")

const (
	POLICY_STATUS_PASS  = "PASS"
	POLICY_STATUS_FAIL  = "FAIL"
	POLICY_STATUS_ERROR = "ERROR"

	POLICY_LEVEL_DISABLED  = "DISABLED"
	POLICY_LEVEL_RECOMMEND = "RECOMMEND"
	POLICY_LEVEL_WARNING   = "WARNING"
	POLICY_LEVEL_BLOCK     = "BLOCK"

	// DENY_QUERY is the rule every gate policy must define
	DENY_QUERY = "data.jardiff.deny"
)

// PolicyEvaluator defines the interface for release gate operations
type PolicyEvaluator interface {
	// LoadAndValidate validates the gate configuration and its policy files
	LoadAndValidate(gate *config.GateConfig) error
	// Evaluate evaluates all policies against every archive result
	Evaluate(ctx context.Context, results []models.ComparisonResult, gate *config.GateConfig) (*config.EvaluationResult, error)
	// CheckOverrides checks for policy override comments in PR comments
	CheckOverrides(comments []*models.Comment, gate *config.GateConfig) map[string]bool
	// Enforce determines if the evaluation result should block the release
	Enforce(result *config.EvaluationResult, overrides map[string]bool) *config.EnforcementResult
	// ApplyOverrides applies policy overrides to the evaluation result
	ApplyOverrides(result *config.EvaluationResult, overrides map[string]bool)
}

// Evaluator evaluates rego policies against comparison results
type Evaluator struct {
	loader *config.Loader
	now    func() time.Time
}

// Ensure Evaluator implements PolicyEvaluator
var _ PolicyEvaluator = (*Evaluator)(nil)

// NewEvaluator creates a new policy evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{
		loader: config.NewLoader(),
		now:    time.Now,
	}
}

// LoadAndValidate validates the gate configuration. Every policy file must
// exist next to a matching _test file.
func (e *Evaluator) LoadAndValidate(gate *config.GateConfig) error {
	if err := e.loader.ValidateGateConfig(gate); err != nil {
		return err
	}

	for id, policy := range gate.Policies {
		policyPath := filepath.Join(gate.PoliciesPath, policy.FilePath)
		if _, err := os.Stat(policyPath); os.IsNotExist(err) {
			return fmt.Errorf("policy %s: file not found: %s", id, policyPath)
		}

		// Check for test file (support both .rego and .opa extensions)
		var testPath string
		if strings.HasSuffix(policyPath, ".rego") {
			testPath = strings.TrimSuffix(policyPath, ".rego") + "_test.rego"
		} else if strings.HasSuffix(policyPath, ".opa") {
			testPath = strings.TrimSuffix(policyPath, ".opa") + "_test.opa"
		} else {
			return fmt.Errorf("policy %s: unsupported file extension (must be .rego or .opa)", id)
		}

		if _, err := os.Stat(testPath); os.IsNotExist(err) {
			return fmt.Errorf("policy %s: test file not found: %s", id, testPath)
		}
	}
	return nil
}

// Evaluate evaluates all policies in id order
func (e *Evaluator) Evaluate(ctx context.Context, results []models.ComparisonResult, gate *config.GateConfig) (*config.EvaluationResult, error) {
	logger.WithField("policies", len(gate.Policies)).Info("Evaluate: starting...")

	result := &config.EvaluationResult{
		TotalPolicies: len(gate.Policies),
		PolicyResults: make([]config.PolicyResult, 0, len(gate.Policies)),
	}

	inputs := make([]map[string]any, 0, len(results))
	for _, r := range results {
		inputs = append(inputs, archiveInput(r))
	}

	ids := make([]string, 0, len(gate.Policies))
	for id := range gate.Policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to evaluate policies: %w", err)
		}
		policyResult := e.evaluatePolicy(ctx, id, gate.Policies[id], inputs, gate.PoliciesPath)
		result.PolicyResults = append(result.PolicyResults, policyResult)

		switch policyResult.Status {
		case POLICY_STATUS_PASS:
			result.PassedPolicies++
		case POLICY_STATUS_FAIL:
			result.FailedPolicies++
		case POLICY_STATUS_ERROR:
			result.ErroredPolicies++
		}
	}

	logger.WithField("failed", result.FailedPolicies).WithField("errored", result.ErroredPolicies).Info("Evaluate: done.")
	return result, nil
}

// evaluatePolicy evaluates a single policy against all archive inputs
func (e *Evaluator) evaluatePolicy(ctx context.Context, id string, policy config.PolicyConfig, inputs []map[string]any, policiesPath string) config.PolicyResult {
	result := config.PolicyResult{
		PolicyID:    id,
		PolicyName:  policy.Name,
		Description: policy.Description,
		Status:      POLICY_STATUS_PASS,
		Violations:  []config.Violation{},
		Level:       e.determineEnforcementLevel(policy.Enforcement),
	}

	// If policy is not in effect, skip it
	if result.Level == POLICY_LEVEL_DISABLED {
		return result
	}

	policyPath := filepath.Join(policiesPath, policy.FilePath)
	policyContent, err := os.ReadFile(policyPath)
	if err != nil {
		result.Status = POLICY_STATUS_ERROR
		result.Error = fmt.Sprintf("Failed to read policy file: %v", err)
		return result
	}

	query, err := rego.New(
		rego.Query(DENY_QUERY),
		rego.Module(filepath.Base(policyPath), string(policyContent)),
	).PrepareForEval(ctx)
	if err != nil {
		result.Status = POLICY_STATUS_ERROR
		result.Error = fmt.Sprintf("Failed to prepare OPA query: %v", err)
		return result
	}

	for _, input := range inputs {
		violations, err := evalDeny(ctx, query, input)
		if err != nil {
			result.Status = POLICY_STATUS_ERROR
			result.Error = fmt.Sprintf("Policy evaluation failed: %v", err)
			return result
		}
		archive, _ := input["archive"].(map[string]any)
		for _, v := range violations {
			result.Violations = append(result.Violations, config.Violation{
				Message: v,
				Archive: fmt.Sprint(archive["name"]),
			})
		}
	}

	if len(result.Violations) > 0 {
		result.Status = POLICY_STATUS_FAIL
	}
	return result
}

func evalDeny(ctx context.Context, query rego.PreparedEvalQuery, input map[string]any) ([]string, error) {
	results, err := query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	var violations []string
	if len(results) > 0 && len(results[0].Expressions) > 0 {
		if denySet, ok := results[0].Expressions[0].Value.([]interface{}); ok {
			for _, v := range denySet {
				if msg, ok := v.(string); ok {
					violations = append(violations, msg)
				}
			}
		}
	}
	sort.Strings(violations)
	return violations, nil
}

// archiveInput is the policy input document of one archive
func archiveInput(r models.ComparisonResult) map[string]any {
	records := make([]any, 0, len(r.Records()))
	for _, rec := range r.Records() {
		lines := make([]any, 0)
		for _, l := range rec.Lines() {
			lines = append(lines, l)
		}
		records = append(records, map[string]any{
			"label": rec.Label(),
			"kind":  rec.Kind().String(),
			"lines": lines,
		})
	}
	return map[string]any{
		"archive": map[string]any{
			"name":    r.Archive().Name,
			"oldPath": r.Archive().OldPath,
			"newPath": r.Archive().NewPath,
		},
		"outcome": r.Outcome().String(),
		"records": records,
		"counts": map[string]any{
			"logical":    r.CountKind(models.KindLogical),
			"nonLogical": r.CountKind(models.KindNonLogical),
			"errors":     r.CountKind(models.KindError),
		},
	}
}

// determineEnforcementLevel determines the current enforcement level based on time
func (e *Evaluator) determineEnforcementLevel(enforcement config.EnforcementConfig) string {
	now := e.now()

	// Check if policy is in effect
	if enforcement.InEffectAfter != nil && now.Before(*enforcement.InEffectAfter) {
		return POLICY_LEVEL_DISABLED
	}

	// Check blocking level
	if enforcement.IsBlockingAfter != nil && !now.Before(*enforcement.IsBlockingAfter) {
		return POLICY_LEVEL_BLOCK
	}

	// Check warning level
	if enforcement.IsWarningAfter != nil && !now.Before(*enforcement.IsWarningAfter) {
		return POLICY_LEVEL_WARNING
	}

	// Default to recommend if in effect
	if enforcement.InEffectAfter != nil {
		return POLICY_LEVEL_RECOMMEND
	}

	return POLICY_LEVEL_DISABLED
}

// CheckOverrides checks PR comments for policy override commands
func (e *Evaluator) CheckOverrides(comments []*models.Comment, gate *config.GateConfig) map[string]bool {
	overrides := make(map[string]bool)

	for policyID, policy := range gate.Policies {
		if policy.Enforcement.Override.Comment == "" {
			continue
		}

		for _, comment := range comments {
			if strings.Contains(comment.Body, policy.Enforcement.Override.Comment) {
				overrides[policyID] = true
				logger.WithField("policy", policyID).WithField("user", comment.User).Info("policy overridden by comment")
				break
			}
		}
	}

	return overrides
}

// Enforce determines the enforcement action based on results and overrides
func (e *Evaluator) Enforce(result *config.EvaluationResult, overrides map[string]bool) *config.EnforcementResult {
	enforcement := &config.EnforcementResult{}

	blockingCount := 0
	warningCount := 0

	for _, pr := range result.PolicyResults {
		if pr.Status != POLICY_STATUS_FAIL {
			continue
		}

		if overrides[pr.PolicyID] {
			continue
		}

		switch pr.Level {
		case POLICY_LEVEL_BLOCK:
			blockingCount++
			enforcement.ShouldBlock = true
		case POLICY_LEVEL_WARNING:
			warningCount++
			enforcement.ShouldWarn = true
		}
	}

	if blockingCount > 0 {
		enforcement.Summary = fmt.Sprintf("%d blocking policy failure(s)", blockingCount)
	} else if warningCount > 0 {
		enforcement.Summary = fmt.Sprintf("%d warning policy failure(s)", warningCount)
	} else {
		enforcement.Summary = "All checks passed"
	}

	return enforcement
}

// ApplyOverrides applies overrides to policy results
func (e *Evaluator) ApplyOverrides(result *config.EvaluationResult, overrides map[string]bool) {
	for i := range result.PolicyResults {
		if overrides[result.PolicyResults[i].PolicyID] {
			result.PolicyResults[i].Overridden = true
		}
	}
}
