// Package document assembles a rendered note body into a standalone HTML page.
package document

import (
	_ "embed"
	"strings"
	"text/template"
)

// DefaultTitle is used when a note has no title.
const DefaultTitle = "Joplin Note"

//go:embed baseline.css
var baselineCSS string

//go:embed document.html.tmpl
var documentTmpl string

// The title and body are inserted verbatim.
var page = template.Must(template.New("document").Parse(documentTmpl))

type pageData struct {
	Title       string
	BaselineCSS string
	ExtraCSS    []string
	Body        string
}

// Assemble returns a complete HTML document. The output depends only on the
// arguments.
func Assemble(title, bodyHTML string, extraCSS []string) string {
	if title == "" {
		title = DefaultTitle
	}
	var b strings.Builder
	// Executing with string data only fails if the writer does, and a
	// strings.Builder never does.
	_ = page.Execute(&b, pageData{
		Title:       title,
		BaselineCSS: baselineCSS,
		ExtraCSS:    extraCSS,
		Body:        bodyHTML,
	})
	return b.String()
}
