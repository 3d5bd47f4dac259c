// Package classify separates meaningful source changes from decompiler noise.
package classify

import (
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"

	"github.com/1744154709/BatchComparisonJar/src/pkg/diff"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
)

var logger = log.WithField("package", "classify")

// BridgeToken replaces every numbered synthetic accessor name.
const BridgeToken = "access$normalized"

var (
	syntheticMarker = regexp.MustCompile(`(?m)^[ \t]*//[ \t]*\$FF: synthetic method[ \t\r]*(?:\n|$)`)
	bridgeMethod    = regexp.MustCompile(`access\$\d+`)
)

// Rule is an extra normalization step applied after the built-in ones.
// Rules must be idempotent for Normalize to stay idempotent.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// CompileRule compiles a pattern/replacement pair into a Rule.
func CompileRule(pattern, replacement string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to compile normalization rule %q: %w", pattern, err)
	}
	return Rule{Pattern: re, Replacement: replacement}, nil
}

// Normalize removes synthetic-method marker lines and canonicalizes
// access$<n> bridge names. It is idempotent.
func Normalize(text string) string {
	text = syntheticMarker.ReplaceAllString(text, "")
	return bridgeMethod.ReplaceAllLiteralString(text, BridgeToken)
}

// Verdict is the outcome of classifying one unit.
type Verdict struct {
	Kind   models.ChangeKind
	Notice string
}

// Classifier decides whether two decompiled texts differ logically.
type Classifier struct {
	differ diff.Differ
	rules  []Rule
}

// NewClassifier creates a classifier using the given edit-script primitive.
func NewClassifier(differ diff.Differ, rules ...Rule) *Classifier {
	return &Classifier{differ: differ, rules: rules}
}

// Normalize applies the built-in normalization followed by the configured rules.
func (c *Classifier) Normalize(text string) string {
	text = Normalize(text)
	for _, r := range c.rules {
		text = r.Pattern.ReplaceAllString(text, r.Replacement)
	}
	return text
}

// Compare classifies the raw old/new texts of one unit. Normalized text is
// only used internally; callers keep the raw pair for rendering.
func (c *Classifier) Compare(oldText, newText, label string) Verdict {
	script := c.differ.Diff(c.Normalize(oldText), c.Normalize(newText))
	if script.AllEqual() {
		logger.WithField("unit", label).Debug("only non-logical differences")
		return Verdict{Kind: models.KindNonLogical, Notice: fmt.Sprintf("Non-logical change detected in %s", label)}
	}
	added, deleted := diff.CountScriptLines(script)
	logger.WithField("unit", label).WithField("added", added).WithField("deleted", deleted).Debug("logical change")
	return Verdict{Kind: models.KindLogical, Notice: fmt.Sprintf("Logical change detected in %s", label)}
}
