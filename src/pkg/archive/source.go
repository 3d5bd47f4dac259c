// Package archive compares two versions of one archive unit by unit.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
)

// ErrNotArchive is returned when a location does not hold a zip archive.
var ErrNotArchive = errors.New("not a zip archive")

// sniffLen is how many leading bytes are used for content detection.
const sniffLen = 3072

// Source gives access to archive contents.
type Source interface {
	// Open returns the whole archive for fingerprinting.
	Open(location string) (io.ReadCloser, error)
	// Units returns the compiled units of the archive keyed by entry name.
	// Directories and entries without the unit suffix are excluded.
	Units(location string) (map[string][]byte, error)
}

// ZipSource reads zip-based archives (jar, war, ...) from a billy filesystem.
type ZipSource struct {
	fs     billy.Filesystem
	suffix string
}

// Ensure ZipSource implements Source
var _ Source = (*ZipSource)(nil)

// NewZipSource creates a source selecting entries ending in unitSuffix.
func NewZipSource(fs billy.Filesystem, unitSuffix string) *ZipSource {
	return &ZipSource{fs: fs, suffix: unitSuffix}
}

func (s *ZipSource) Open(location string) (io.ReadCloser, error) {
	f, err := s.fs.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", location, err)
	}
	return f, nil
}

func (s *ZipSource) Units(location string) (map[string][]byte, error) {
	info, err := s.fs.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	f, err := s.fs.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", location, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := f.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	if mt := mimetype.Detect(head[:n]); !isZip(mt) {
		return nil, fmt.Errorf("%s (detected %s): %w", location, mt.String(), ErrNotArchive)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read entries of %s: %w", location, err)
	}

	units := make(map[string][]byte)
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") || !strings.HasSuffix(entry.Name, s.suffix) {
			continue
		}
		if _, seen := units[entry.Name]; seen {
			continue
		}
		data, err := readEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %s of %s: %w", entry.Name, location, err)
		}
		units[entry.Name] = data
	}
	return units, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isZip(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}
