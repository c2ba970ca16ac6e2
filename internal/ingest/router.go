package ingest

import (
	"path/filepath"
	"strings"
)

func DetectType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return "pdf"
	default:
		return "unknown"
	}
}

// IsPDF reports whether name ends in the .pdf extension, ignoring case.
func IsPDF(name string) bool { return DetectType(name) == "pdf" }
