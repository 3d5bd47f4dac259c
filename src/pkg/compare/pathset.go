// Package compare pairs two sets of archives by name and compares them.
package compare

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
	"github.com/1744154709/BatchComparisonJar/src/pkg/progress"
)

var logger = log.WithField("package", "compare")

// ArchiveComparator compares both sides of one archive.
type ArchiveComparator interface {
	Compare(ctx context.Context, archive models.Archive) models.ComparisonResult
}

// PathSetComparator compares two name → location sets of archives.
type PathSetComparator struct {
	archives ArchiveComparator
	workers  int
	sink     progress.Sink
}

// NewPathSetComparator creates a comparator running up to workers archive
// comparisons at once.
func NewPathSetComparator(archives ArchiveComparator, workers int, sink progress.Sink) *PathSetComparator {
	if workers < 1 {
		workers = 1
	}
	if sink == nil {
		sink = progress.Discard
	}
	return &PathSetComparator{archives: archives, workers: workers, sink: sink}
}

// Compare returns one result per archive name, old-set names first then
// new-only names, each group sorted. Archives found unchanged are omitted.
func (p *PathSetComparator) Compare(ctx context.Context, oldSet, newSet map[string]string) []models.ComparisonResult {
	logger.WithField("old", len(oldSet)).WithField("new", len(newSet)).Info("Compare: starting...")

	oldNames := sortedKeys(oldSet)
	var newOnly []string
	for _, name := range sortedKeys(newSet) {
		if _, ok := oldSet[name]; !ok {
			newOnly = append(newOnly, name)
		}
	}

	results := make([]models.ComparisonResult, len(oldNames)+len(newOnly))
	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, name := range oldNames {
		archive := models.Archive{Name: name, OldPath: oldSet[name]}
		newPath, ok := newSet[name]
		if !ok {
			p.sink.Emit(progress.Event{Type: progress.ArchiveDeleted, Archive: name, Message: "archive deleted"})
			results[i] = models.DeletedResult(archive)
			continue
		}
		archive.NewPath = newPath
		g.Go(func() error {
			results[i] = p.archives.Compare(ctx, archive)
			return nil
		})
	}
	_ = g.Wait()

	for j, name := range newOnly {
		p.sink.Emit(progress.Event{Type: progress.ArchiveAdded, Archive: name, Message: "archive added"})
		results[len(oldNames)+j] = models.AddedResult(models.Archive{Name: name, NewPath: newSet[name]})
	}

	kept := results[:0]
	for _, r := range results {
		if r.Outcome() != models.OutcomeUnchanged {
			kept = append(kept, r)
		}
	}
	logger.WithField("reported", len(kept)).Info("Compare: done.")
	return kept
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
