package config

import "time"

// Config is the complete jardiff configuration
type Config struct {
	UnitSuffix    string           `yaml:"unitSuffix"`
	ArchiveSuffix string           `yaml:"archiveSuffix"`
	Workers       int              `yaml:"workers"`      // concurrent archive comparisons
	EntryWorkers  int              `yaml:"entryWorkers"` // concurrent unit decompilations per archive
	StripVersions bool             `yaml:"stripVersions"`
	Decompiler    DecompilerConfig `yaml:"decompiler"`
	Diff          DiffConfig       `yaml:"diff"`
	Normalize     NormalizeConfig  `yaml:"normalize"`
	Report        ReportConfig     `yaml:"report"`
	Gate          GateConfig       `yaml:"gate"`
}

// DecompilerConfig configures the external decompiler command
type DecompilerConfig struct {
	// Command and arguments; {input} and {outdir} are substituted per unit
	Command []string      `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"` // per unit and side, e.g. "60s"
}

// DiffConfig configures edit-script computation and patches
type DiffConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	Context       int           `yaml:"context"`
	MaxPatchBytes int           `yaml:"maxPatchBytes"`
}

// NormalizeConfig holds extra normalization rules
type NormalizeConfig struct {
	Rules []NormalizeRule `yaml:"rules"`
}

// NormalizeRule is a regular expression and its replacement
type NormalizeRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// ReportConfig configures report generation
type ReportConfig struct {
	Title         string `yaml:"title"`
	TemplatesPath string `yaml:"templatesPath"`
}

// GateConfig is the release gate configuration
type GateConfig struct {
	PoliciesPath string                  `yaml:"policiesPath"`
	Policies     map[string]PolicyConfig `yaml:"policies"`
}

// PolicyConfig represents a single policy configuration
type PolicyConfig struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Type        string            `yaml:"type"` // "opa" only for now
	FilePath    string            `yaml:"filePath"`
	Enforcement EnforcementConfig `yaml:"enforcement"`
}

// EnforcementConfig defines when and how a policy should be enforced
type EnforcementConfig struct {
	InEffectAfter   *time.Time     `yaml:"inEffectAfter,omitempty"`
	IsWarningAfter  *time.Time     `yaml:"isWarningAfter,omitempty"`
	IsBlockingAfter *time.Time     `yaml:"isBlockingAfter,omitempty"`
	Override        OverrideConfig `yaml:"override"`
}

// OverrideConfig defines how a policy can be overridden
type OverrideConfig struct {
	Comment string `yaml:"comment"` // e.g., "/jardiff-override-api"
}

// EvaluationResult represents the result of policy evaluation
type EvaluationResult struct {
	TotalPolicies   int
	PassedPolicies  int
	FailedPolicies  int
	ErroredPolicies int
	PolicyResults   []PolicyResult
}

// PolicyResult represents the result of a single policy evaluation
type PolicyResult struct {
	PolicyID    string
	PolicyName  string
	Description string
	Status      string // "PASS", "FAIL", "ERROR"
	Violations  []Violation
	Error       string
	Level       string // "RECOMMEND", "WARNING", "BLOCK", "DISABLED"
	Overridden  bool
}

// Violation represents a single policy violation
type Violation struct {
	Message string
	Archive string
}

// EnforcementResult represents the enforcement decision
type EnforcementResult struct {
	ShouldBlock bool
	ShouldWarn  bool
	Summary     string
}
