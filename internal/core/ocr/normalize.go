package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)
)

func normalizeNewlines(s string) string {
	return reCRLF.ReplaceAllString(s, "\n")
}

// CleanOCRText removes rule lines tesseract reads out of table borders and
// collapses runs of blank lines. Digits and spacing inside lines are untouched.
func CleanOCRText(s string) string {
	if s == "" {
		return s
	}
	s = normalizeNewlines(s)
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
