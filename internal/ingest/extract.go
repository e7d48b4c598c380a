package ingest

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

// Pre-compiled expressions for stripping HTML down to readable text.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClosers  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// ExtractText converts raw file content into plain text suitable for
// chunking and embedding. Markdown is rendered to HTML first so that
// link targets, emphasis markers and code fences do not pollute the
// extracted text.
func ExtractText(format Format, content []byte) (string, error) {
	switch format {
	case FormatText:
		return strings.TrimSpace(string(content)), nil

	case FormatMarkdown:
		var buf bytes.Buffer
		if err := goldmark.Convert(content, &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		return stripHTML(buf.String()), nil

	case FormatHTML:
		return stripHTML(string(content)), nil

	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// stripHTML removes markup and returns the readable text, one trimmed
// non-empty line per block element.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockClosers.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
