package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// UnifiedOptions controls unified patch generation.
type UnifiedOptions struct {
	FromFile string
	ToFile   string
	// Context lines around each hunk. Zero means DefaultContext.
	Context int
	// MaxBytes skips the patch when old+new exceed it. Zero means no limit.
	MaxBytes int
}

// Unified produces a classic unified patch between before and after.
// It returns an empty string when both texts are identical.
func Unified(before, after string, opts UnifiedOptions) (string, error) {
	if before == after {
		return "", nil
	}
	if opts.MaxBytes > 0 && len(before)+len(after) > opts.MaxBytes {
		return fmt.Sprintf("--- %s\n+++ %s\n@@\n# diff omitted (%d bytes)\n",
			opts.FromFile, opts.ToFile, len(before)+len(after)), nil
	}
	ctx := opts.Context
	if ctx <= 0 {
		ctx = DefaultContext
	}

	u := difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: opts.FromFile,
		ToFile:   opts.ToFile,
		Context:  ctx,
	}
	out, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to build unified diff: %w", err)
	}
	return out, nil
}

// splitLines splits s keeping line terminators; the last line always gets one
// so hunks print cleanly.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
