package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	log "github.com/sirupsen/logrus"

	"github.com/1744154709/BatchComparisonJar/src/internal/runner"
	"github.com/1744154709/BatchComparisonJar/src/pkg/config"
	"github.com/1744154709/BatchComparisonJar/src/pkg/decompile"
	"github.com/1744154709/BatchComparisonJar/src/pkg/github"
	"github.com/1744154709/BatchComparisonJar/src/pkg/policy"
	"github.com/1744154709/BatchComparisonJar/src/pkg/template"
	"github.com/1744154709/BatchComparisonJar/src/pkg/trace"
)

var logger = log.WithField("package", "main")

// Do all initialization steps here:
// 1. Load the config file and apply flag overrides
// 2. Initialize the filesystem, decompiler, evaluator and renderer
// 3. Initialize the runner instance for the run mode
// 4. Initialize the runner (gate validation, PR info in github mode)
func initialize(ctx context.Context, opts *runner.Options, stripChanged bool) (runner.RunnerInterface, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, opts, stripChanged)
	if err := loader.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(cfg.Decompiler.Command) == 0 {
		return nil, errors.New("no decompiler configured: set --decompiler-cmd or decompiler.command in the config file")
	}

	decompiler, err := decompile.NewCommandDecompiler(cfg.Decompiler.Command, cfg.Decompiler.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompiler: %w", err)
	}
	evaluator := policy.NewEvaluator()
	renderer := template.NewRenderer(cfg.Report.TemplatesPath)
	fs := osfs.New("/")

	var runnerInstance runner.RunnerInterface
	switch opts.RunMode {
	case runner.RUN_MODE_GITHUB:
		ghClient, err := github.NewClient()
		if err != nil {
			return nil, fmt.Errorf("GitHub authentication failed: %w", err)
		}
		runnerInstance, err = runner.NewRunnerGitHub(ctx, opts, cfg, fs, decompiler, evaluator, renderer, ghClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub runner: %w", err)
		}
	case runner.RUN_MODE_LOCAL:
		runnerInstance, err = runner.NewRunnerLocal(ctx, opts, cfg, fs, decompiler, evaluator, renderer)
		if err != nil {
			return nil, fmt.Errorf("failed to create local runner: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid run mode: %s", opts.RunMode)
	}

	if err := runnerInstance.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize runner: %w", err)
	}
	return runnerInstance, nil
}

func run(ctx context.Context, opts *runner.Options, stripChanged bool) error {
	if err := validateOptions(opts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	r, err := initialize(ctx, opts, stripChanged)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	shutdown, err := trace.InitTracer("jardiff", opts.EnableTracing, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer shutdown()

	if err := r.Process(); err != nil {
		if errors.Is(err, runner.ErrBlocked) {
			logger.WithError(err).Error("release gate blocked")
		}
		return err
	}
	return nil
}

// applyOverrides lets flags win over the config file
func applyOverrides(cfg *config.Config, opts *runner.Options, stripChanged bool) {
	if opts.DecompilerCmd != "" {
		cfg.Decompiler.Command = strings.Fields(opts.DecompilerCmd)
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if stripChanged {
		cfg.StripVersions = opts.StripVersions
	}
	if opts.TemplatesPath != "" {
		cfg.Report.TemplatesPath = opts.TemplatesPath
	}
}

func validateOptions(opts *runner.Options) error {
	if opts.OldPath == "" || opts.NewPath == "" {
		return errors.New("--old and --new are required")
	}

	// Validate run mode
	if opts.RunMode != runner.RUN_MODE_GITHUB && opts.RunMode != runner.RUN_MODE_LOCAL {
		return fmt.Errorf("run-mode must be 'github' or 'local', got: %s", opts.RunMode)
	}

	if opts.RunMode == runner.RUN_MODE_GITHUB {
		if opts.GhRepo == "" {
			return errors.New("github mode requires --gh-repo")
		}
		if opts.GhPrNumber == 0 {
			return errors.New("github mode requires --gh-pr-number")
		}
	}
	if opts.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", opts.Workers)
	}

	// paths resolve against the root of the OS filesystem
	for _, p := range []*string{&opts.OldPath, &opts.NewPath, &opts.OutputDir} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", *p, err)
		}
		*p = abs
	}
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Dir(opts.NewPath)
	}
	return nil
}
