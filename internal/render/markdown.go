// Package render converts model markdown into HTML for JSON responses.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// md mirrors the original template filter: single newlines become <br> so
// the model's loose line breaks survive rendering.
var md = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// MarkdownToHTML renders markdown to HTML. Empty input stays empty.
func MarkdownToHTML(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
