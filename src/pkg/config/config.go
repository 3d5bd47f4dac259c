package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var logger = log.WithField("package", "config")

const (
	// DEFAULT_CONFIG_FILE is looked up in the XDG config directories
	DEFAULT_CONFIG_FILE = "jardiff/config.yaml"

	DEFAULT_UNIT_SUFFIX        = ".class"
	DEFAULT_ARCHIVE_SUFFIX     = ".jar"
	DEFAULT_ENTRY_WORKERS      = 4
	DEFAULT_DECOMPILER_TIMEOUT = 60 * time.Second
	DEFAULT_DIFF_TIMEOUT       = time.Second
	DEFAULT_DIFF_CONTEXT       = 3
	DEFAULT_MAX_PATCH_BYTES    = 1 << 20
	DEFAULT_REPORT_TITLE       = "JAR Comparison Report"
)

// ConfigLoader defines the interface for loading configuration files
type ConfigLoader interface {
	// LoadConfig loads the configuration from a YAML file
	LoadConfig(path string) (*Config, error)
	// ValidateConfig validates the configuration
	ValidateConfig(config *Config) error
}

// Loader handles loading configuration files
type Loader struct{}

// Ensure Loader implements ConfigLoader
var _ ConfigLoader = (*Loader)(nil)

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		UnitSuffix:    DEFAULT_UNIT_SUFFIX,
		ArchiveSuffix: DEFAULT_ARCHIVE_SUFFIX,
		Workers:       runtime.NumCPU(),
		EntryWorkers:  DEFAULT_ENTRY_WORKERS,
		Decompiler: DecompilerConfig{
			Timeout: DEFAULT_DECOMPILER_TIMEOUT,
		},
		Diff: DiffConfig{
			Timeout:       DEFAULT_DIFF_TIMEOUT,
			Context:       DEFAULT_DIFF_CONTEXT,
			MaxPatchBytes: DEFAULT_MAX_PATCH_BYTES,
		},
		Report: ReportConfig{
			Title: DEFAULT_REPORT_TITLE,
		},
	}
}

// LoadConfig loads the configuration from a YAML file on top of the defaults.
// An empty path searches $XDG_CONFIG_HOME and $XDG_CONFIG_DIRS for
// jardiff/config.yaml and falls back to the defaults when none exists.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		found, err := xdg.SearchConfigFile(DEFAULT_CONFIG_FILE)
		if err != nil {
			logger.Debug("no config file found, using defaults")
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	logger.WithField("path", path).Info("loaded config")
	return cfg, nil
}

// ValidateConfig validates the configuration
func (l *Loader) ValidateConfig(config *Config) error {
	if !strings.HasPrefix(config.UnitSuffix, ".") {
		return fmt.Errorf("unitSuffix must start with '.', got %q", config.UnitSuffix)
	}
	if !strings.HasPrefix(config.ArchiveSuffix, ".") {
		return fmt.Errorf("archiveSuffix must start with '.', got %q", config.ArchiveSuffix)
	}
	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	}
	if config.EntryWorkers < 1 {
		return fmt.Errorf("entryWorkers must be at least 1, got %d", config.EntryWorkers)
	}
	if config.Decompiler.Timeout < 0 {
		return errors.New("decompiler.timeout cannot be negative")
	}
	if config.Diff.Context < 0 {
		return errors.New("diff.context cannot be negative")
	}
	for i, rule := range config.Normalize.Rules {
		if rule.Pattern == "" {
			return fmt.Errorf("normalize.rules[%d]: pattern is required", i)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("normalize.rules[%d]: %w", i, err)
		}
	}
	return l.ValidateGateConfig(&config.Gate)
}

// ValidateGateConfig validates the release gate policies
func (l *Loader) ValidateGateConfig(gate *GateConfig) error {
	for id, policy := range gate.Policies {
		if policy.Name == "" {
			return fmt.Errorf("policy %s: name is required", id)
		}
		if policy.Type == "" {
			return fmt.Errorf("policy %s: type is required", id)
		}
		if policy.Type != "opa" {
			return fmt.Errorf("policy %s: unsupported type %s (only 'opa' is supported)", id, policy.Type)
		}
		if policy.FilePath == "" {
			return fmt.Errorf("policy %s: filePath is required", id)
		}

		// Validate enforcement dates are in order if set
		if policy.Enforcement.InEffectAfter != nil && policy.Enforcement.IsWarningAfter != nil {
			if policy.Enforcement.IsWarningAfter.Before(*policy.Enforcement.InEffectAfter) {
				return fmt.Errorf("policy %s: isWarningAfter cannot be before inEffectAfter", id)
			}
		}
		if policy.Enforcement.IsWarningAfter != nil && policy.Enforcement.IsBlockingAfter != nil {
			if policy.Enforcement.IsBlockingAfter.Before(*policy.Enforcement.IsWarningAfter) {
				return fmt.Errorf("policy %s: isBlockingAfter cannot be before isWarningAfter", id)
			}
		}
	}
	return nil
}
