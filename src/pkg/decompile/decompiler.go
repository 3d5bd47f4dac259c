// Package decompile turns compiled units into readable source text.
package decompile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "decompile")

const (
	PLACEHOLDER_INPUT  = "{input}"
	PLACEHOLDER_OUTDIR = "{outdir}"

	SOURCE_SUFFIX = ".java"

	// maxOutput bounds how much tool output is kept in an Error
	maxOutput = 4096

	waitDelay = 2 * time.Second
)

// Decompiler converts one compiled unit into source text.
type Decompiler interface {
	Decompile(ctx context.Context, unit []byte, entryName string) (string, error)
}

// Func adapts a function to Decompiler.
type Func func(ctx context.Context, unit []byte, entryName string) (string, error)

func (f Func) Decompile(ctx context.Context, unit []byte, entryName string) (string, error) {
	return f(ctx, unit, entryName)
}

// Error reports a failed decompilation of one entry.
type Error struct {
	Entry  string
	Output string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("decompilation of %s failed: %v", e.Entry, e.Err)
	if e.Output != "" {
		msg += "\nOutput: " + e.Output
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoOutput is returned when the tool succeeded but produced no source.
var ErrNoOutput = errors.New("decompiler produced no output")

// CommandDecompiler runs an external decompiler for every unit.
// The unit is written to a temporary file named after the entry; {input}
// and {outdir} in the arguments are replaced with that file and with an
// empty output directory. The first .java file written to the output
// directory is the result, falling back to the tool's stdout.
type CommandDecompiler struct {
	command []string
	timeout time.Duration
	tempDir string
}

// Ensure CommandDecompiler implements Decompiler
var _ Decompiler = (*CommandDecompiler)(nil)

// NewCommandDecompiler creates a decompiler running command. A zero timeout
// means no per-unit limit beyond the caller's context.
func NewCommandDecompiler(command []string, timeout time.Duration) (*CommandDecompiler, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, errors.New("decompiler command is empty")
	}
	return &CommandDecompiler{command: append([]string(nil), command...), timeout: timeout}, nil
}

// WithTempDir sets the parent directory for per-unit work directories.
func (d *CommandDecompiler) WithTempDir(dir string) *CommandDecompiler {
	d.tempDir = dir
	return d
}

// Decompile runs the configured command on a temporary copy of the unit.
func (d *CommandDecompiler) Decompile(ctx context.Context, unit []byte, entryName string) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	work, err := os.MkdirTemp(d.tempDir, "jardiff-decompile-")
	if err != nil {
		return "", &Error{Entry: entryName, Err: fmt.Errorf("failed to create work dir: %w", err)}
	}
	defer os.RemoveAll(work)

	outDir := filepath.Join(work, "out")
	if err := os.Mkdir(outDir, 0o755); err != nil {
		return "", &Error{Entry: entryName, Err: fmt.Errorf("failed to create output dir: %w", err)}
	}
	input := filepath.Join(work, path.Base(entryName))
	if err := os.WriteFile(input, unit, 0o644); err != nil {
		return "", &Error{Entry: entryName, Err: fmt.Errorf("failed to write unit: %w", err)}
	}

	args := make([]string, len(d.command))
	for i, a := range d.command {
		a = strings.ReplaceAll(a, PLACEHOLDER_INPUT, input)
		args[i] = strings.ReplaceAll(a, PLACEHOLDER_OUTDIR, outDir)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children that inherit the pipes must not outlive a cancelled run
	cmd.WaitDelay = waitDelay

	logger.WithField("entry", entryName).Debug("Decompile: starting...")
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return "", &Error{Entry: entryName, Output: truncate(stderr.String()), Err: err}
	}

	source, err := firstSource(outDir)
	if err != nil {
		return "", &Error{Entry: entryName, Err: err}
	}
	if source == "" {
		source = stdout.String()
	}
	if strings.TrimSpace(source) == "" {
		return "", &Error{Entry: entryName, Output: truncate(stderr.String()), Err: ErrNoOutput}
	}
	logger.WithField("entry", entryName).Debug("Decompile: done.")
	return source, nil
}

func firstSource(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SOURCE_SUFFIX) {
			return nil
		}
		found = p
		return fs.SkipAll
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan decompiler output: %w", err)
	}
	if found == "" {
		return "", nil
	}
	data, err := os.ReadFile(found)
	if err != nil {
		return "", fmt.Errorf("failed to read decompiled source: %w", err)
	}
	return string(data), nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutput {
		return s[:maxOutput] + "..."
	}
	return s
}
