// Package markdown compiles note markdown to body HTML with a primary
// plugin-aware compiler and a plain fallback compiler.
package markdown

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/fallback"
	"github.com/starford/noteshare/internal/models"
)

// MarkupLanguage identifies the source markup, numbered as the host does.
type MarkupLanguage int

const MarkupMarkdown MarkupLanguage = 1

// Options are passed to the primary compiler on every call.
type Options struct {
	BodyOnly         bool
	PDFViewerEnabled bool
}

// Theme colours the rendered output.
type Theme struct {
	BackgroundColor     string `yaml:"background_color"`
	Color               string `yaml:"color"`
	CodeBackgroundColor string `yaml:"code_background_color"`
	CodeStyle           string `yaml:"code_style"`
}

// DefaultTheme is a light theme with GitHub-style code highlighting.
func DefaultTheme() Theme {
	return Theme{
		BackgroundColor:     "#ffffff",
		Color:               "#333333",
		CodeBackgroundColor: "#f5f5f5",
		CodeStyle:           "github",
	}
}

// CSS returns the colour rules of the theme, or "" when no colour is set.
func (t Theme) CSS() string {
	var b strings.Builder
	if t.BackgroundColor != "" || t.Color != "" {
		b.WriteString("body {")
		if t.BackgroundColor != "" {
			fmt.Fprintf(&b, " background-color: %s;", t.BackgroundColor)
		}
		if t.Color != "" {
			fmt.Fprintf(&b, " color: %s;", t.Color)
		}
		b.WriteString(" }\n")
	}
	if t.CodeBackgroundColor != "" {
		fmt.Fprintf(&b, "pre, code { background-color: %s; }\n", t.CodeBackgroundColor)
	}
	return b.String()
}

// Compiler is the primary, plugin-aware markdown compiler.
type Compiler interface {
	Render(lang MarkupLanguage, text string, theme Theme, opts Options) (*models.RenderedFragment, error)
}

// FallbackCompiler is a plain markdown compiler without plugins.
type FallbackCompiler interface {
	Render(text string) (string, error)
}

// Renderer calls the primary compiler and falls back to the secondary one
// when it fails. Its configuration is fixed at construction.
type Renderer struct {
	features Features
	theme    Theme
	primary  Compiler
	fallback FallbackCompiler
	logger   *slog.Logger
}

// NewRenderer creates a renderer. features is copied.
func NewRenderer(features Features, theme Theme, primary Compiler, fb FallbackCompiler, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		features: features.Clone(),
		theme:    theme,
		primary:  primary,
		fallback: fb,
		logger:   logger,
	}
}

// Features returns a copy of the configured features.
func (r *Renderer) Features() Features {
	return r.features.Clone()
}

// Render compiles body. The fallback compiler runs once if the primary fails;
// only when both fail is an apperr.ErrCompilerFailure returned.
func (r *Renderer) Render(body string) (*models.RenderedFragment, error) {
	frag, err := fallback.First(
		func() (*models.RenderedFragment, error) {
			frag, err := r.renderPrimary(body)
			if err != nil {
				r.logger.Warn("markdown: primary compiler failed, using fallback",
					slog.String("error", err.Error()))
			}
			return frag, err
		},
		func() (*models.RenderedFragment, error) {
			return r.renderFallback(body)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrCompilerFailure, err)
	}
	return frag, nil
}

func (r *Renderer) renderPrimary(body string) (frag *models.RenderedFragment, err error) {
	if r.primary == nil {
		return nil, errors.New("markdown: no primary compiler")
	}
	defer func() {
		if p := recover(); p != nil {
			frag, err = nil, fmt.Errorf("markdown: primary compiler panic: %v", p)
		}
	}()
	opts := Options{BodyOnly: true, PDFViewerEnabled: true}
	frag, err = r.primary.Render(MarkupMarkdown, body, r.theme, opts)
	if err != nil {
		return nil, err
	}
	if frag == nil {
		return nil, errors.New("markdown: primary compiler returned no output")
	}
	return frag, nil
}

func (r *Renderer) renderFallback(body string) (frag *models.RenderedFragment, err error) {
	if r.fallback == nil {
		return nil, errors.New("markdown: no fallback compiler")
	}
	defer func() {
		if p := recover(); p != nil {
			frag, err = nil, fmt.Errorf("markdown: fallback compiler panic: %v", p)
		}
	}()
	html, err := r.fallback.Render(body)
	if err != nil {
		return nil, fmt.Errorf("markdown: fallback compiler: %w", err)
	}
	return &models.RenderedFragment{HTML: html}, nil
}
