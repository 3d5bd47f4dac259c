package diff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxTokens keeps every token index inside the valid rune range once the
// surrogate block is skipped.
const maxTokens = unicode.MaxRune - 0x800

// tokenize splits text into identifier words, runs of horizontal space,
// single newlines and single punctuation characters.
func tokenize(s string) []string {
	var tokens []string
	runes := []rune(s)
	for i := 0; i < len(runes); {
		j := i + 1
		switch {
		case isWordRune(runes[i]):
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
		case runes[i] == ' ' || runes[i] == '\t':
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t') {
				j++
			}
		}
		tokens = append(tokens, string(runes[i:j]))
		i = j
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokensToRunes maps every distinct token to one rune so that diff-match-patch
// can diff token sequences. The returned table maps runes back to tokens.
func tokensToRunes(a, b []string) ([]rune, []rune, map[rune]string, bool) {
	index := make(map[string]rune)
	table := make(map[rune]string)
	encode := func(tokens []string) ([]rune, bool) {
		out := make([]rune, len(tokens))
		for i, tok := range tokens {
			r, ok := index[tok]
			if !ok {
				if len(index) >= maxTokens {
					return nil, false
				}
				r = tokenRune(len(index))
				index[tok] = r
				table[r] = tok
			}
			out[i] = r
		}
		return out, true
	}
	ra, ok := encode(a)
	if !ok {
		return nil, nil, nil, false
	}
	rb, ok := encode(b)
	if !ok {
		return nil, nil, nil, false
	}
	return ra, rb, table, true
}

func tokenRune(i int) rune {
	r := rune(i + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

func runesToTokens(diffs []diffmatchpatch.Diff, table map[rune]string) []diffmatchpatch.Diff {
	out := make([]diffmatchpatch.Diff, 0, len(diffs))
	for _, df := range diffs {
		var sb strings.Builder
		for _, r := range df.Text {
			sb.WriteString(table[r])
		}
		out = append(out, diffmatchpatch.Diff{Type: df.Type, Text: sb.String()})
	}
	return out
}
