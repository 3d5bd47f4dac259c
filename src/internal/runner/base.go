package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/1744154709/BatchComparisonJar/src/pkg/archive"
	"github.com/1744154709/BatchComparisonJar/src/pkg/classify"
	"github.com/1744154709/BatchComparisonJar/src/pkg/compare"
	"github.com/1744154709/BatchComparisonJar/src/pkg/config"
	"github.com/1744154709/BatchComparisonJar/src/pkg/decompile"
	"github.com/1744154709/BatchComparisonJar/src/pkg/diff"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
	"github.com/1744154709/BatchComparisonJar/src/pkg/policy"
	"github.com/1744154709/BatchComparisonJar/src/pkg/progress"
	"github.com/1744154709/BatchComparisonJar/src/pkg/render"
	"github.com/1744154709/BatchComparisonJar/src/pkg/report"
	"github.com/1744154709/BatchComparisonJar/src/pkg/template"
	"github.com/1744154709/BatchComparisonJar/src/pkg/trace"
)

var logger = log.WithField("package", "runner")

// ErrBlocked is returned by Process when a blocking gate policy failed
var ErrBlocked = errors.New("blocking policy failures detected")

type RunnerBase struct {
	Context context.Context
	Options *Options
	Config  *config.Config

	Fs         billy.Filesystem
	Decompiler decompile.Decompiler
	Evaluator  policy.PolicyEvaluator
	Reporter   *policy.Reporter
	Renderer   *template.Renderer

	// Comments are read for gate overrides, github mode only
	Comments []*models.Comment
	// OldLabel and NewLabel name the two sides in reports
	OldLabel string
	NewLabel string

	Recorder *progress.Recorder
	differ   *diff.DMPDiffer

	Instance RunnerInterface
}

// make RunnerBase implement RunnerInterface
var _ RunnerInterface = (*RunnerBase)(nil)

func NewRunnerBase(
	ctx context.Context,
	options *Options,
	cfg *config.Config,
	fs billy.Filesystem,
	decompiler decompile.Decompiler,
	evaluator policy.PolicyEvaluator,
	renderer *template.Renderer,
) (*RunnerBase, error) {
	if fs == nil || decompiler == nil || evaluator == nil || renderer == nil || cfg == nil {
		return nil, errors.New("config, filesystem, decompiler, evaluator, and renderer are required")
	}
	runner := &RunnerBase{
		Context:    ctx,
		Options:    options,
		Config:     cfg,
		Fs:         fs,
		Decompiler: decompiler,
		Evaluator:  evaluator,
		Reporter:   policy.NewReporter(),
		Renderer:   renderer,
		OldLabel:   filepath.Base(options.OldPath),
		NewLabel:   filepath.Base(options.NewPath),
		Recorder:   &progress.Recorder{},
		differ:     diff.NewDiffer(cfg.Diff.Timeout),
	}
	runner.Instance = runner
	return runner, nil
}

func (r *RunnerBase) Initialize() error {
	logger.Info("Initialize: starting...")

	if r.Options.OutputDir == "" {
		r.Options.OutputDir = filepath.Dir(filepath.Clean(r.Options.NewPath))
	}

	if len(r.Config.Gate.Policies) > 0 {
		logger.Info("Initialize: Evaluator: Loading and validating gate configuration")
		if err := r.Evaluator.LoadAndValidate(&r.Config.Gate); err != nil {
			return fmt.Errorf("failed to load gate config: %w", err)
		}
	}

	logger.WithField("outputDir", r.Options.OutputDir).Info("Initialize: done.")
	return nil
}

func (r *RunnerBase) Scan() (*ArchiveSets, error) {
	logger.Info("Scan: starting...")
	_, span := trace.StartSpan(r.Context, "Scan")
	defer span.End()

	key := compare.FileNameKey
	if r.Config.StripVersions {
		key = compare.VersionlessKey
	}

	oldSet, err := compare.Scan(r.Fs, r.Options.OldPath, r.Config.ArchiveSuffix, key)
	if err != nil {
		return nil, fmt.Errorf("failed to scan old directory: %w", err)
	}
	newSet, err := compare.Scan(r.Fs, r.Options.NewPath, r.Config.ArchiveSuffix, key)
	if err != nil {
		return nil, fmt.Errorf("failed to scan new directory: %w", err)
	}

	logger.WithField("old", len(oldSet)).WithField("new", len(newSet)).Info("Scan: done.")
	return &ArchiveSets{Old: oldSet, New: newSet}, nil
}

func (r *RunnerBase) Compare(sets *ArchiveSets) ([]models.ComparisonResult, error) {
	logger.Info("Compare: starting...")
	ctx, span := trace.StartSpan(r.Context, "Compare")
	defer span.End()

	rules := make([]classify.Rule, 0, len(r.Config.Normalize.Rules))
	for i, rule := range r.Config.Normalize.Rules {
		compiled, err := classify.CompileRule(rule.Pattern, rule.Replacement)
		if err != nil {
			return nil, fmt.Errorf("normalize.rules[%d]: %w", i, err)
		}
		rules = append(rules, compiled)
	}

	sink := progress.Multi(progress.NewLogSink(logger), r.Recorder)
	archives := archive.NewComparator(
		archive.NewZipSource(r.Fs, r.Config.UnitSuffix),
		r.Decompiler,
		classify.NewClassifier(r.differ, rules...),
		archive.WithSink(sink),
		archive.WithWorkers(r.Config.EntryWorkers),
		archive.WithEntryTimeout(r.Config.Decompiler.Timeout),
		archive.WithUnitSuffix(r.Config.UnitSuffix),
	)

	results := compare.NewPathSetComparator(tracedArchives{archives}, r.Config.Workers, sink).
		Compare(ctx, sets.Old, sets.New)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("comparison cancelled: %w", err)
	}

	logger.WithField("results", len(results)).
		WithField("fingerprintFailures", len(r.Recorder.OfType(progress.FingerprintFailed))).
		WithField("resourceOnly", len(r.Recorder.OfType(progress.ResourceOnlyChange))).
		Info("Compare: done.")
	return results, nil
}

func (r *RunnerBase) Evaluate(results []models.ComparisonResult) (*models.PolicyEvaluation, *config.EnforcementResult, error) {
	if len(r.Config.Gate.Policies) == 0 {
		logger.Info("Evaluate: no gate policies configured")
		return nil, nil, nil
	}
	logger.Info("Evaluate: starting...")
	ctx, span := trace.StartSpan(r.Context, "Evaluate")
	defer span.End()

	result, err := r.Evaluator.Evaluate(ctx, results, &r.Config.Gate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate gate: %w", err)
	}
	overrides := r.Evaluator.CheckOverrides(r.Comments, &r.Config.Gate)
	r.Evaluator.ApplyOverrides(result, overrides)
	enforcement := r.Evaluator.Enforce(result, overrides)

	logger.WithField("summary", enforcement.Summary).Info("Evaluate: done.")
	return r.Reporter.GenerateReport(result, enforcement), enforcement, nil
}

func (r *RunnerBase) Process() error {
	logger.Info("Process: starting...")
	ctx, span := trace.StartSpan(r.Context, "Process")
	defer span.End()
	r.Context = ctx

	sets, err := r.Instance.Scan()
	if err != nil {
		return err
	}

	results, err := r.Instance.Compare(sets)
	if err != nil {
		return err
	}

	evaluation, enforcement, err := r.Instance.Evaluate(results)
	if err != nil {
		return err
	}

	out, err := r.buildOutput(sets, results, evaluation, enforcement)
	if err != nil {
		return err
	}
	if err := r.Instance.Output(out); err != nil {
		return err
	}

	logger.WithField("archives", len(results)).Info("Process: done.")
	if enforcement != nil && enforcement.ShouldBlock {
		return fmt.Errorf("%w: %s", ErrBlocked, enforcement.Summary)
	}
	if enforcement != nil && enforcement.ShouldWarn {
		logger.WithField("summary", enforcement.Summary).Warn("warning policy failures detected")
	}
	return nil
}

func (r *RunnerBase) buildOutput(
	sets *ArchiveSets,
	results []models.ComparisonResult,
	evaluation *models.PolicyEvaluation,
	enforcement *config.EnforcementResult,
) (*RunOutput, error) {
	_, span := trace.StartSpan(r.Context, "Render")
	defer span.End()

	builder := report.NewBuilder(render.NewRenderer(r.differ), report.Options{
		Title:          r.Config.Report.Title,
		OldLabel:       r.OldLabel,
		NewLabel:       r.NewLabel,
		SharedArchives: sets.Shared(),
		PatchContext:   r.Config.Diff.Context,
		MaxPatchBytes:  r.Config.Diff.MaxPatchBytes,
	})

	mainData := builder.Build(results, report.ViewMain)
	mainData.PolicyEvaluation = evaluation
	nonLogical := builder.Build(results, report.ViewNonLogical)

	summary, err := r.Renderer.RenderSummary(mainData)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary: %w", err)
	}

	return &RunOutput{
		Builder:     builder,
		Results:     results,
		Main:        mainData,
		NonLogical:  nonLogical,
		Summary:     summary,
		Enforcement: enforcement,
	}, nil
}

// Output writes both HTML reports, the Markdown summary and, if enabled,
// the JSON export to the output directory.
func (r *RunnerBase) Output(out *RunOutput) error {
	logger.Info("Output: starting...")

	dir := r.Options.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, data := range []*models.ReportData{out.Main, out.NonLogical} {
		html, err := r.Renderer.RenderReport(data)
		if err != nil {
			return fmt.Errorf("failed to render %s report: %w", data.View, err)
		}
		path := filepath.Join(dir, report.View(data.View).FileName(out.Builder.Timestamp()))
		if err := os.WriteFile(path, []byte(html), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.WithField("filePath", path).Info("Written report to file")
	}

	summaryPath := filepath.Join(dir, SUMMARY_FILE_NAME)
	if err := os.WriteFile(summaryPath, []byte(out.Summary), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	logger.WithField("filePath", summaryPath).Info("Written summary to file")

	if err := r.outputReportJson(out); err != nil {
		return err
	}

	logger.Info("Output: done.")
	return nil
}

// Exporting report json file to output directory if enabled
func (r *RunnerBase) outputReportJson(out *RunOutput) error {
	if !r.Options.EnableExportReport {
		logger.Info("OutputJson: option was disabled")
		return nil
	}
	logger.Info("OutputJson: starting...")

	path, err := report.WriteJSON(r.Options.OutputDir, out.Builder.NewExport(out.Results))
	if err != nil {
		logger.WithField("error", err).Error("Failed to write report data to file")
		return err
	}
	logger.WithField("filePath", path).Info("Written report data to file")
	return nil
}

// tracedArchives opens one span per archive comparison
type tracedArchives struct {
	inner compare.ArchiveComparator
}

func (t tracedArchives) Compare(ctx context.Context, a models.Archive) models.ComparisonResult {
	ctx, span := trace.StartSpan(ctx, "CompareArchive", attribute.String("archive", a.Name))
	defer span.End()
	res := t.inner.Compare(ctx, a)
	span.SetAttributes(attribute.String("outcome", res.Outcome().String()))
	return res
}
