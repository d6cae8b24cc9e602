package extract

import (
	"regexp"
	"strings"
)

var reHorizontalSpace = regexp.MustCompile(`[ \t]+`)

// NormalizeSpaces collapses every run of spaces and tabs into one space and trims the result.
// Line breaks are kept, so a label and its value on the same line stay matchable
// while line-scoped recognizers still see the line boundaries.
func NormalizeSpaces(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(reHorizontalSpace.ReplaceAllString(s, " "))
}

// SplitNonEmptyLines splits s on line breaks, trims each line and drops the empty ones.
func SplitNonEmptyLines(s string) []string {
	parts := strings.FieldsFunc(s, isLineBreak)
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// Document is one invoice's page-concatenated text in the three views the recognizers read.
type Document struct {
	// Raw is the text exactly as the page-text collaborator produced it.
	Raw string
	// Blob is Raw with horizontal whitespace collapsed; newlines preserved.
	Blob string
	// Lines holds the trimmed, non-empty lines of Raw in order.
	Lines []string
}

// NewDocument builds every view of raw once.
func NewDocument(raw string) *Document {
	return &Document{
		Raw:   raw,
		Blob:  NormalizeSpaces(raw),
		Lines: SplitNonEmptyLines(raw),
	}
}
