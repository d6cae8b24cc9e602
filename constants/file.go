package constants

import "strings"

// Source formats stored in extract_jobs.format.
const (
	PDF  = "PDF"
	TEXT = "TXT"
)

// FileTypes holds the allowed file types for the format field in an extract job.
var FileTypes = []string{PDF, TEXT}

// AllowedExtensions holds the default allowed file extensions for invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps a file extension (with or without dot) to a source format, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TEXT
	default:
		return ""
	}
}
