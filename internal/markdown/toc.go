package markdown

import (
	"fmt"
	"html"
	"strings"
)

// Paragraphs consisting only of one of these markers become the TOC.
var tocMarkers = []string{"<p>[[toc]]</p>", "<p>${toc}</p>", "<p>[toc]</p>"}

const tocCSS = `.table-of-contents ul { list-style: none; padding-left: 0; }
.table-of-contents .toc-level-2 { padding-left: 1em; }
.table-of-contents .toc-level-3 { padding-left: 2em; }
.table-of-contents .toc-level-4, .table-of-contents .toc-level-5, .table-of-contents .toc-level-6 { padding-left: 3em; }
`

// insertTOC replaces TOC marker paragraphs with a heading list.
func insertTOC(body string, headings []heading) (string, bool) {
	found := false
	for _, m := range tocMarkers {
		if strings.Contains(body, m) {
			found = true
			break
		}
	}
	if !found {
		return body, false
	}
	nav := renderTOC(headings)
	for _, m := range tocMarkers {
		body = strings.ReplaceAll(body, m, nav)
	}
	return body, true
}

func renderTOC(headings []heading) string {
	var b strings.Builder
	b.WriteString(`<nav class="table-of-contents"><ul>`)
	for _, h := range headings {
		if h.id == "" {
			fmt.Fprintf(&b, `<li class="toc-level-%d">%s</li>`, h.level, html.EscapeString(h.text))
			continue
		}
		fmt.Fprintf(&b, `<li class="toc-level-%d"><a href="#%s">%s</a></li>`,
			h.level, html.EscapeString(h.id), html.EscapeString(h.text))
	}
	b.WriteString("</ul></nav>")
	return b.String()
}
