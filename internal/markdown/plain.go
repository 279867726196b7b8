package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Plain is the fallback compiler: raw HTML allowed, links detected, smart
// punctuation and hard line breaks, nothing else.
type Plain struct {
	md goldmark.Markdown
}

// NewPlain creates the fallback compiler.
func NewPlain() *Plain {
	return &Plain{md: goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Typographer),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe(), gmhtml.WithHardWraps()),
	)}
}

// Render converts text to HTML.
func (p *Plain) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
