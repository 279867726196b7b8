package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/noteshare/internal/models"
)

// Plugin asset names reported in RenderedFragment.PluginAssets.
const AssetMermaid = "mermaid"

// unsupported lists features with no goldmark counterpart. The three media
// players are covered by attachment inlining before compilation.
var unsupported = []string{
	FeatureKatex, FeatureFountain, FeatureMark, FeatureSub, FeatureSup,
	FeatureAbbr, FeatureEmoji, FeatureInsert, FeatureMultitable,
}

// Goldmark is the primary compiler, built on goldmark with chroma
// highlighting for fenced code.
type Goldmark struct {
	md       goldmark.Markdown
	features Features
}

// NewGoldmark builds a compiler for the given features.
func NewGoldmark(features Features) *Goldmark {
	features = features.Clone()

	exts := []goldmark.Extender{extension.Table, extension.Strikethrough, extension.TaskList}
	if features.Enabled(FeatureLinkify) {
		exts = append(exts, extension.Linkify)
	}
	if features.Enabled(FeatureTypographer) {
		exts = append(exts, extension.Typographer)
	}
	if features.Enabled(FeatureFootnote) {
		exts = append(exts, extension.Footnote)
	}
	if features.Enabled(FeatureDeflist) {
		exts = append(exts, extension.DefinitionList)
	}

	rendererOpts := []renderer.Option{
		gmhtml.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(newCodeBlockRenderer(features.Enabled(FeatureMermaid)), 200)),
	}
	if !features.Enabled(FeatureSoftBreaks) {
		rendererOpts = append(rendererOpts, gmhtml.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Goldmark{md: md, features: features}
}

// Unsupported returns the enabled features this compiler cannot honour.
func (g *Goldmark) Unsupported() []string {
	var out []string
	for _, name := range unsupported {
		if g.features.Enabled(name) {
			out = append(out, name)
		}
	}
	return out
}

// Render compiles markdown text into a body fragment.
func (g *Goldmark) Render(lang MarkupLanguage, src string, theme Theme, opts Options) (*models.RenderedFragment, error) {
	if lang != MarkupMarkdown {
		return nil, fmt.Errorf("markdown: unsupported markup language %d", lang)
	}
	source := []byte(src)
	doc := g.md.Parser().Parse(text.NewReader(source))
	info := inspect(doc, source, g.features.Enabled(FeatureMermaid))

	var buf bytes.Buffer
	if err := g.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("markdown: render: %w", err)
	}
	html := buf.String()

	var styles []string
	if css := theme.CSS(); css != "" {
		styles = append(styles, css)
	}
	if info.codeBlocks > 0 {
		css, err := codeCSS(theme.CodeStyle)
		if err != nil {
			return nil, err
		}
		styles = append(styles, css)
	}
	if g.features.Enabled(FeatureTOC) {
		var replaced bool
		html, replaced = insertTOC(html, info.headings)
		if replaced {
			styles = append(styles, tocCSS)
		}
	}

	var assets []string
	if info.mermaid > 0 {
		assets = append(assets, AssetMermaid)
	}

	if !opts.BodyOnly {
		html = `<div id="rendered-md">` + html + `</div>`
	}
	return &models.RenderedFragment{HTML: html, StyleFragments: styles, PluginAssets: assets}, nil
}

type heading struct {
	level int
	id    string
	text  string
}

type docInfo struct {
	codeBlocks int
	mermaid    int
	headings   []heading
}

func inspect(doc ast.Node, source []byte, mermaid bool) docInfo {
	var info docInfo
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if mermaid && strings.EqualFold(string(node.Language(source)), "mermaid") {
				info.mermaid++
			} else {
				info.codeBlocks++
			}
		case *ast.Heading:
			h := heading{level: node.Level, text: plainText(node, source)}
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					h.id = string(b)
				}
			}
			info.headings = append(info.headings, h)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return info
}

// plainText concatenates the text leaves under n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
