package ingest

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var previewMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(),
	),
)

const previewTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; }
pre { background: #f6f8fa; padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
%s
</body>
</html>
`

// RenderPreview produces a standalone HTML page for browsing a document
// in the library UI. Markdown is rendered with GFM and syntax
// highlighting, HTML is embedded as-is, and plain text is wrapped in a
// <pre> block.
func RenderPreview(format Format, title string, content []byte) ([]byte, error) {
	var body string
	switch format {
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := previewMarkdown.Convert(content, &buf); err != nil {
			return nil, fmt.Errorf("rendering markdown preview: %w", err)
		}
		body = buf.String()

	case FormatHTML:
		// Already HTML, keep the document body as the preview body.
		body = string(content)

	case FormatText:
		body = "<pre>" + html.EscapeString(string(content)) + "</pre>"

	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	page := fmt.Sprintf(previewTemplate, html.EscapeString(strings.TrimSpace(title)), body)
	return []byte(page), nil
}
