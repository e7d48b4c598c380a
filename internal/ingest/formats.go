package ingest

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported document file format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var extensionFormats = map[string]Format{
	".txt":      FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// FormatOf maps a filename to its format by extension. The second return
// is false for unsupported extensions.
func FormatOf(filename string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	f, ok := extensionFormats[ext]
	return f, ok
}

// SupportedExtensions lists the file extensions ingestion accepts.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown", ".html", ".htm"}
}
