package app

import (
	"regexp"
	"strings"
)

var (
	blankRuns  = regexp.MustCompile(`\n{2,}`)
	listMarker = regexp.MustCompile(`(?m)^([1-9])\.\s*`)
)

// Format normalizes a copilot reply for display: literal \n escapes become
// real newlines, runs of blank lines collapse to one, and numbered list
// markers at line starts become bullets. Markers are matched at line starts
// only, so prose like "version 2.0" is left alone.
func Format(text string) string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = blankRuns.ReplaceAllString(text, "\n")
	text = listMarker.ReplaceAllString(text, "- ")
	return strings.TrimSpace(text)
}
