package archive

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/1744154709/BatchComparisonJar/src/pkg/classify"
	"github.com/1744154709/BatchComparisonJar/src/pkg/decompile"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
	"github.com/1744154709/BatchComparisonJar/src/pkg/progress"
)

var logger = log.WithField("package", "archive")

const (
	OLD_SOURCE_UNAVAILABLE = "/* Old source unavailable */"
	NEW_SOURCE_UNAVAILABLE = "/* New source unavailable */"

	DEFAULT_UNIT_SUFFIX = ".class"
)

// Comparator compares the two sides of one archive.
type Comparator struct {
	source        Source
	fingerprinter Fingerprinter
	decompiler    decompile.Decompiler
	classifier    *classify.Classifier
	sink          progress.Sink
	workers       int
	entryTimeout  time.Duration
	unitSuffix    string
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithSink sets the progress sink.
func WithSink(sink progress.Sink) Option {
	return func(c *Comparator) { c.sink = sink }
}

// WithWorkers bounds how many units are decompiled concurrently.
func WithWorkers(n int) Option {
	return func(c *Comparator) { c.workers = n }
}

// WithEntryTimeout bounds the decompilation of one side of one unit.
func WithEntryTimeout(d time.Duration) Option {
	return func(c *Comparator) { c.entryTimeout = d }
}

// WithFingerprinter overrides the default SHA-256 fingerprinter.
func WithFingerprinter(fp Fingerprinter) Option {
	return func(c *Comparator) { c.fingerprinter = fp }
}

// WithUnitSuffix sets the suffix stripped from entry names to build labels.
func WithUnitSuffix(suffix string) Option {
	return func(c *Comparator) { c.unitSuffix = suffix }
}

// NewComparator creates an archive comparator.
func NewComparator(source Source, decompiler decompile.Decompiler, classifier *classify.Classifier, opts ...Option) *Comparator {
	c := &Comparator{
		source:        source,
		fingerprinter: NewFingerprinter(),
		decompiler:    decompiler,
		classifier:    classifier,
		sink:          progress.Discard,
		workers:       1,
		unitSuffix:    DEFAULT_UNIT_SUFFIX,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	return c
}

// Compare compares both sides of archive. It never fails: read and
// decompilation errors become Error records.
func (c *Comparator) Compare(ctx context.Context, archive models.Archive) models.ComparisonResult {
	switch {
	case !archive.HasNew():
		return models.DeletedResult(archive)
	case !archive.HasOld():
		return models.AddedResult(archive)
	}

	entry := logger.WithField("archive", archive.Name)
	entry.Debug("Compare: starting...")
	c.emit(progress.Event{Type: progress.ArchiveStarted, Archive: archive.Name, Message: "comparing archive"})
	result := c.compare(ctx, archive)
	entry.WithField("outcome", result.Outcome().String()).Debug("Compare: done.")
	c.emit(progress.Event{
		Type:    progress.ArchiveDone,
		Archive: archive.Name,
		Message: fmt.Sprintf("%s with %d change record(s)", result.Outcome(), len(result.Records())),
	})
	return result
}

func (c *Comparator) compare(ctx context.Context, archive models.Archive) models.ComparisonResult {
	builder := models.NewResultBuilder(archive)

	fingerprintsDiffer := false
	oldDigest, oldErr := fingerprintLocation(c.source, c.fingerprinter, archive.OldPath)
	newDigest, newErr := fingerprintLocation(c.source, c.fingerprinter, archive.NewPath)
	switch {
	case oldErr != nil || newErr != nil:
		c.emit(progress.Event{
			Type:    progress.FingerprintFailed,
			Archive: archive.Name,
			Message: "fingerprint failed, falling back to deep comparison",
			Err:     firstErr(oldErr, newErr),
		})
	case oldDigest == newDigest:
		c.emit(progress.Event{Type: progress.FingerprintMatch, Archive: archive.Name, Message: "identical archives: " + oldDigest.String()})
		return builder.Unchanged()
	default:
		fingerprintsDiffer = true
	}

	c.emit(progress.Event{Type: progress.Scanning, Archive: archive.Name, Message: "scanning units"})
	oldUnits, err := c.source.Units(archive.OldPath)
	if err == nil {
		var newUnits map[string][]byte
		newUnits, err = c.source.Units(archive.NewPath)
		if err == nil {
			builder.Add(c.compareUnits(ctx, archive.Name, oldUnits, newUnits)...)
		}
	}
	if err != nil {
		c.emit(progress.Event{Type: progress.ArchiveReadFailed, Archive: archive.Name, Message: "cannot read archive", Err: err})
		return builder.Add(models.NewNote(models.KindError, "Error comparing archives: "+err.Error())).Build()
	}

	if builder.Len() == 0 && fingerprintsDiffer {
		c.emit(progress.Event{
			Type:    progress.ResourceOnlyChange,
			Archive: archive.Name,
			Message: "archives differ outside compiled units; reported as unchanged",
		})
	}
	return builder.Build()
}

// unitJob is one entry name and the record it produced.
type unitJob struct {
	name     string
	oldBytes []byte
	newBytes []byte
	record   *models.ChangeRecord
}

func (c *Comparator) compareUnits(ctx context.Context, archiveName string, oldUnits, newUnits map[string][]byte) []models.ChangeRecord {
	names := make([]string, 0, len(oldUnits)+len(newUnits))
	for name := range oldUnits {
		names = append(names, name)
	}
	for name := range newUnits {
		if _, ok := oldUnits[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	jobs := make([]*unitJob, len(names))
	g := new(errgroup.Group)
	g.SetLimit(c.workers)
	for i, name := range names {
		job := &unitJob{name: name}
		jobs[i] = job
		oldBytes, inOld := oldUnits[name]
		newBytes, inNew := newUnits[name]
		label := c.label(name)
		switch {
		case !inNew:
			rec := models.NewNote(models.KindLogical, "  - Removed class: "+label)
			job.record = &rec
		case !inOld:
			rec := models.NewNote(models.KindLogical, "  - Added class: "+label)
			job.record = &rec
		case c.sameUnit(oldBytes, newBytes):
		default:
			job.oldBytes, job.newBytes = oldBytes, newBytes
			g.Go(func() error {
				rec := c.compareUnit(ctx, archiveName, job)
				job.record = &rec
				return nil
			})
		}
	}
	_ = g.Wait()

	records := make([]models.ChangeRecord, 0, len(jobs))
	for _, job := range jobs {
		if job.record != nil {
			records = append(records, *job.record)
		}
	}
	return records
}

func (c *Comparator) sameUnit(a, b []byte) bool {
	da, errA := c.fingerprinter.Fingerprint(bytes.NewReader(a))
	db, errB := c.fingerprinter.Fingerprint(bytes.NewReader(b))
	if errA != nil || errB != nil {
		return bytes.Equal(a, b)
	}
	return da == db
}

func (c *Comparator) compareUnit(ctx context.Context, archiveName string, job *unitJob) models.ChangeRecord {
	label := c.label(job.name)
	c.emit(progress.Event{Type: progress.UnitDecompiling, Archive: archiveName, Unit: job.name, Message: "decompiling " + label})

	oldSrc, oldErr := c.decompile(ctx, job.oldBytes, job.name)
	newSrc, newErr := c.decompile(ctx, job.newBytes, job.name)
	if oldErr == nil && newErr == nil {
		verdict := c.classifier.Compare(oldSrc, newSrc, label)
		return models.NewChangeRecord(label, verdict.Kind, []string{verdict.Notice}, &oldSrc, &newSrc)
	}

	lines := []string{"[decompile failed] " + label}
	if oldErr != nil {
		lines = append(lines, indent("old: "+oldErr.Error())...)
		oldSrc = OLD_SOURCE_UNAVAILABLE
	}
	if newErr != nil {
		lines = append(lines, indent("new: "+newErr.Error())...)
		newSrc = NEW_SOURCE_UNAVAILABLE
	}
	c.emit(progress.Event{
		Type:    progress.DecompileFailed,
		Archive: archiveName,
		Unit:    job.name,
		Message: "decompile failed",
		Err:     firstErr(oldErr, newErr),
	})
	return models.NewChangeRecord(label, models.KindError, lines, &oldSrc, &newSrc)
}

func (c *Comparator) decompile(ctx context.Context, unit []byte, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("comparison cancelled: %w", err)
	}
	if c.entryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.entryTimeout)
		defer cancel()
	}
	return c.decompiler.Decompile(ctx, unit, name)
}

func (c *Comparator) emit(e progress.Event) {
	c.sink.Emit(e)
}

// label turns an entry name into a dotted class name.
func (c *Comparator) label(name string) string {
	return ClassName(name, c.unitSuffix)
}

// ClassName converts "com/example/Foo$Bar.class" into "com.example.Foo$Bar".
func ClassName(entryName, suffix string) string {
	return strings.ReplaceAll(strings.TrimSuffix(entryName, suffix), "/", ".")
}

func indent(text string) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return lines
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
