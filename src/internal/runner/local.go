package runner

import (
	"context"

	"github.com/go-git/go-billy/v5"

	"github.com/1744154709/BatchComparisonJar/src/pkg/config"
	"github.com/1744154709/BatchComparisonJar/src/pkg/decompile"
	"github.com/1744154709/BatchComparisonJar/src/pkg/policy"
	"github.com/1744154709/BatchComparisonJar/src/pkg/template"
)

// RunnerLocal writes every report to the output directory
type RunnerLocal struct {
	RunnerBase
}

// make RunnerLocal implement RunnerInterface
var _ RunnerInterface = (*RunnerLocal)(nil)

func NewRunnerLocal(
	ctx context.Context,
	options *Options,
	cfg *config.Config,
	fs billy.Filesystem,
	decompiler decompile.Decompiler,
	evaluator policy.PolicyEvaluator,
	renderer *template.Renderer,
) (*RunnerLocal, error) {
	baseRunner, err := NewRunnerBase(ctx, options, cfg, fs, decompiler, evaluator, renderer)
	if err != nil {
		return nil, err
	}
	runner := &RunnerLocal{
		RunnerBase: *baseRunner,
	}
	runner.Instance = runner
	return runner, nil
}
