// Package report builds the report views consumed by the templates.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/1744154709/BatchComparisonJar/src/pkg/diff"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
	"github.com/1744154709/BatchComparisonJar/src/pkg/render"
)

var logger = log.WithField("package", "report")

// View selects which change records a report shows.
type View string

const (
	// ViewMain shows logical changes and errors.
	ViewMain View = "main"
	// ViewNonLogical shows changes made only of decompiler noise.
	ViewNonLogical View = "non_logical"
)

// Kinds returns the record kinds shown in the view.
func (v View) Kinds() []models.ChangeKind {
	if v == ViewNonLogical {
		return []models.ChangeKind{models.KindNonLogical}
	}
	return []models.ChangeKind{models.KindLogical, models.KindError}
}

// FileName returns the report file name for the view, e.g.
// jar_comparison_main_20240131_235959.html.
func (v View) FileName(ts time.Time) string {
	return fmt.Sprintf("jar_comparison_%s_%s.html", v, ts.Format("20060102_150405"))
}

// Options carries run-wide report settings.
type Options struct {
	Title    string
	OldLabel string
	NewLabel string
	// SharedArchives is the number of archive names present on both sides,
	// used to count unchanged archives omitted from the results.
	SharedArchives int
	PatchContext   int
	MaxPatchBytes  int
}

// Builder turns comparison results into report data.
type Builder struct {
	renderer  *render.Renderer
	opts      Options
	runID     string
	timestamp time.Time
}

// NewBuilder creates a builder; every view it builds shares one run id and timestamp.
func NewBuilder(renderer *render.Renderer, opts Options) *Builder {
	return &Builder{
		renderer:  renderer,
		opts:      opts,
		runID:     uuid.NewString(),
		timestamp: time.Now(),
	}
}

func (b *Builder) RunID() string        { return b.runID }
func (b *Builder) Timestamp() time.Time { return b.timestamp }

// Summarize counts archives by outcome and records by kind.
func (b *Builder) Summarize(results []models.ComparisonResult) models.OutcomeCounts {
	var counts models.OutcomeCounts
	for _, r := range results {
		switch r.Outcome() {
		case models.OutcomeAdded:
			counts.Added++
		case models.OutcomeDeleted:
			counts.Deleted++
		case models.OutcomeModified:
			counts.Modified++
		case models.OutcomeUnchanged:
			counts.Unchanged++
		}
		counts.Logical += r.CountKind(models.KindLogical)
		counts.NonLogical += r.CountKind(models.KindNonLogical)
		counts.Errors += r.CountKind(models.KindError)
	}
	if omitted := b.opts.SharedArchives - counts.Modified - counts.Unchanged; omitted > 0 {
		counts.Unchanged += omitted
	}
	return counts
}

// Build assembles the data of one view. The main view also lists added and
// deleted archives; both views skip archives without records of their kinds.
func (b *Builder) Build(results []models.ComparisonResult, view View) *models.ReportData {
	logger.WithField("view", string(view)).Info("Build: starting...")

	data := &models.ReportData{
		RunID:     b.runID,
		Title:     b.opts.Title,
		View:      string(view),
		Timestamp: b.timestamp,
		OldLabel:  b.opts.OldLabel,
		NewLabel:  b.opts.NewLabel,
		Summary:   b.Summarize(results),
		Archives:  []models.ArchiveSection{},
	}

	for _, r := range results {
		records := r.RecordsOf(view.Kinds()...)
		oneSided := r.Outcome() == models.OutcomeAdded || r.Outcome() == models.OutcomeDeleted
		if len(records) == 0 && !(view == ViewMain && oneSided) {
			continue
		}
		section := models.ArchiveSection{
			Name:    r.Archive().Name,
			OldPath: r.Archive().OldPath,
			NewPath: r.Archive().NewPath,
			Outcome: r.Outcome().String(),
		}
		for _, rec := range records {
			section.Records = append(section.Records, b.record(rec))
		}
		data.Archives = append(data.Archives, section)
	}

	logger.WithField("view", string(view)).WithField("archives", len(data.Archives)).Info("Build: done.")
	return data
}

func (b *Builder) record(rec models.ChangeRecord) models.RecordSection {
	section := models.RecordSection{
		Label: rec.Label(),
		Kind:  rec.Kind().String(),
		Lines: rec.Lines(),
	}
	if rec.Kind() == models.KindError || !rec.HasSources() {
		return section
	}

	oldSrc, _ := rec.OldSource()
	newSrc, _ := rec.NewSource()
	for _, l := range b.renderer.Render(oldSrc, newSrc) {
		section.DiffLines = append(section.DiffLines, models.DiffLine{
			Op:      l.Op.String(),
			OldLine: l.OldLine,
			NewLine: l.NewLine,
			HTML:    l.HTML(),
			Text:    l.Text(),
		})
	}

	patch, err := diff.Unified(oldSrc, newSrc, diff.UnifiedOptions{
		FromFile: "old/" + rec.Label(),
		ToFile:   "new/" + rec.Label(),
		Context:  b.opts.PatchContext,
		MaxBytes: b.opts.MaxPatchBytes,
	})
	if err != nil {
		logger.WithField("unit", rec.Label()).WithError(err).Warn("failed to build patch")
		return section
	}
	section.Patch = patch
	section.AddedLineCount, section.DeletedLineCount, _ = diff.CalcLineChangesFromDiffContent(patch)
	return section
}
