package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var codeFormatter = chromahtml.New(chromahtml.WithClasses(true))

// codeBlockRenderer highlights fenced code with chroma classes and leaves
// mermaid diagrams as <pre class="mermaid"> for a client-side renderer.
type codeBlockRenderer struct {
	mermaid bool
}

func newCodeBlockRenderer(mermaid bool) *codeBlockRenderer {
	return &codeBlockRenderer{mermaid: mermaid}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if r.mermaid && strings.EqualFold(lang, "mermaid") {
		_, _ = w.WriteString(`<pre class="mermaid">`)
		_, _ = w.WriteString(html.EscapeString(code.String()))
		_, _ = w.WriteString("</pre>\n")
		return ast.WalkSkipChildren, nil
	}

	if err := highlight(w, lang, code.String()); err != nil {
		// Unhighlighted output still carries the code.
		_, _ = w.WriteString("<pre><code>")
		_, _ = w.WriteString(html.EscapeString(code.String()))
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkSkipChildren, nil
}

func highlight(w util.BufWriter, lang, code string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := codeFormatter.Format(&buf, styles.Fallback, it); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// codeCSS returns the chroma class rules for the named style.
func codeCSS(name string) (string, error) {
	style := styles.Get(name)
	var buf bytes.Buffer
	if err := codeFormatter.WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("markdown: code css: %w", err)
	}
	return buf.String(), nil
}
