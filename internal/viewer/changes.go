package viewer

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Changes summarizes how a page's text changed between two loads
type Changes struct {
	LinesAdded   int
	LinesRemoved int
}

// Identical reports whether nothing changed
func (c Changes) Identical() bool {
	return c.LinesAdded == 0 && c.LinesRemoved == 0
}

// String renders the summary for the viewer header
func (c Changes) String() string {
	if c.Identical() {
		return "no changes"
	}
	return fmt.Sprintf("+%d -%d lines", c.LinesAdded, c.LinesRemoved)
}

// CompareText runs a line diff between two renders of a page
func CompareText(oldText, newText string) Changes {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var c Changes
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			c.LinesAdded += n
		case diffmatchpatch.DiffDelete:
			c.LinesRemoved += n
		}
	}
	return c
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
