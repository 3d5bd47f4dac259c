package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadConfig(t *testing.T) {
	path := writeConfig(t, `
workers: 2
stripVersions: true
decompiler:
  command: ["java", "-jar", "cfr.jar", "{input}"]
  timeout: 30s
normalize:
  rules:
    - pattern: 'lambda\$\w+\$\d+'
      replacement: 'lambda$normalized'
gate:
  policiesPath: ./policies
  policies:
    no-removed-classes:
      name: No removed classes
      type: opa
      filePath: removed.rego
      enforcement:
        inEffectAfter: 2024-01-01T00:00:00Z
        override:
          comment: /jardiff-override-removed
`)

	cfg, err := NewLoader().LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.StripVersions)
	assert.Equal(t, []string{"java", "-jar", "cfr.jar", "{input}"}, cfg.Decompiler.Command)
	assert.Equal(t, 30*time.Second, cfg.Decompiler.Timeout)
	require.Len(t, cfg.Normalize.Rules, 1)
	assert.Equal(t, "lambda$normalized", cfg.Normalize.Rules[0].Replacement)

	// untouched fields keep their defaults
	assert.Equal(t, DEFAULT_UNIT_SUFFIX, cfg.UnitSuffix)
	assert.Equal(t, DEFAULT_ENTRY_WORKERS, cfg.EntryWorkers)
	assert.Equal(t, DEFAULT_DIFF_CONTEXT, cfg.Diff.Context)

	policy := cfg.Gate.Policies["no-removed-classes"]
	require.NotNil(t, policy.Enforcement.InEffectAfter)
	assert.Equal(t, 2024, policy.Enforcement.InEffectAfter.Year())

	assert.NoError(t, NewLoader().ValidateConfig(cfg))
}

func TestLoader_LoadConfig_Errors(t *testing.T) {
	_, err := NewLoader().LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = NewLoader().LoadConfig(writeConfig(t, "workers: [1"))
	assert.Error(t, err)
}

func TestLoader_LoadConfig_XDGFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()

	cfg, err := NewLoader().LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().UnitSuffix, cfg.UnitSuffix)
}

func TestLoader_ValidateConfig(t *testing.T) {
	at := func(s string) *time.Time {
		v, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return &v
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "bad unit suffix", mutate: func(c *Config) { c.UnitSuffix = "class" }, wantErr: "unitSuffix"},
		{name: "no workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "workers"},
		{name: "no entry workers", mutate: func(c *Config) { c.EntryWorkers = 0 }, wantErr: "entryWorkers"},
		{name: "negative timeout", mutate: func(c *Config) { c.Decompiler.Timeout = -time.Second }, wantErr: "decompiler.timeout"},
		{
			name:    "invalid rule",
			mutate:  func(c *Config) { c.Normalize.Rules = []NormalizeRule{{Pattern: "("}} },
			wantErr: "normalize.rules[0]",
		},
		{
			name: "unsupported policy type",
			mutate: func(c *Config) {
				c.Gate.Policies = map[string]PolicyConfig{"p": {Name: "P", Type: "cue", FilePath: "p.rego"}}
			},
			wantErr: "unsupported type",
		},
		{
			name: "dates out of order",
			mutate: func(c *Config) {
				c.Gate.Policies = map[string]PolicyConfig{"p": {
					Name: "P", Type: "opa", FilePath: "p.rego",
					Enforcement: EnforcementConfig{
						IsWarningAfter:  at("2025-02-01T00:00:00Z"),
						IsBlockingAfter: at("2025-01-01T00:00:00Z"),
					},
				}}
			},
			wantErr: "isBlockingAfter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := NewLoader().ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), "error %q should mention %q", err, tt.wantErr)
		})
	}
}
