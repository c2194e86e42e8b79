// Package summary renders document summaries and chains summarizer backends.
package summary

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

var renderer = goldmark.New()

// RenderMarkdown converts a Markdown summary to an HTML fragment. Raw HTML in
// the input is not passed through.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render summary markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`<`, `\<`, `>`, `\>`, `#`, `\#`, `|`, `\|`, `~`, `\~`,
)

// EscapeMarkdown neutralizes Markdown syntax in text lifted from a document.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
