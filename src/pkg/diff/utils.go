package diff

import "strings"

// CalcLineChangesFromDiffContent calculates the number of added and deleted lines from a diff content
// returns: addedLines, deletedLines, totalLines
// operates on unified diff output; file headers are not counted
func CalcLineChangesFromDiffContent(diffContent string) (int, int, int) {
	addedLines := 0
	deletedLines := 0
	inHunk := false
	for _, line := range strings.Split(diffContent, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
			continue
		case strings.HasPrefix(line, "+"):
			addedLines++
		case strings.HasPrefix(line, "-"):
			deletedLines++
		}
	}
	return addedLines, deletedLines, addedLines + deletedLines
}

// CountScriptLines counts the lines touched by the insert and delete runs of
// a script. A run that ends mid-line still counts its partial line.
func CountScriptLines(s Script) (added, deleted int) {
	for _, e := range s {
		n := strings.Count(e.Text, "\n")
		if !strings.HasSuffix(e.Text, "\n") {
			n++
		}
		switch e.Op {
		case OpInsert:
			added += n
		case OpDelete:
			deleted += n
		}
	}
	return added, deleted
}
