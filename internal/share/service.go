// Package share turns a stored note into a saved, self-contained HTML file.
package share

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/document"
	"github.com/starford/noteshare/internal/gate"
	"github.com/starford/noteshare/internal/inliner"
	"github.com/starford/noteshare/internal/locale"
	"github.com/starford/noteshare/internal/markdown"
	"github.com/starford/noteshare/internal/models"
	"github.com/starford/noteshare/internal/notestore"
	"github.com/starford/noteshare/internal/storage"
)

// Service runs the share pipeline for single notes.
type Service struct {
	source   notestore.Source
	inliner  *inliner.Inliner
	renderer *markdown.Renderer
	gate     *gate.Wrapper
	sink     storage.Provider
	strings  locale.Table
	logger   *slog.Logger
}

// NewService wires the pipeline. Artifacts are written to sink.
func NewService(source notestore.Source, renderer *markdown.Renderer, sink storage.Provider, table locale.Table, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:   source,
		inliner:  inliner.New(source, table, logger),
		renderer: renderer,
		gate:     gate.New(table),
		sink:     sink,
		strings:  table,
		logger:   logger,
	}
}

// Strings returns the locale table used for user-facing text.
func (s *Service) Strings() locale.Table {
	return s.strings
}

// Rendered is an assembled, ungated note document.
type Rendered struct {
	Note         *models.Note
	HTML         string
	PluginAssets []string
	// Unlinked lists referenced resource ids missing from the note's
	// resource associations.
	Unlinked []string
}

// Render builds the standalone document for noteID.
func (s *Service) Render(ctx context.Context, noteID string) (*Rendered, error) {
	note, err := s.source.GetNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("share: get note: %w", err)
	}

	unlinked := s.unlinkedReferences(ctx, note)

	body := s.inliner.Inline(ctx, note.Body)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("share: render note %s: %w", noteID, err)
	}

	frag, err := s.renderer.Render(body)
	if err != nil {
		return nil, fmt.Errorf("share: render note %s: %w", noteID, err)
	}

	return &Rendered{
		Note:         note,
		HTML:         document.Assemble(note.Title, frag.HTML, frag.StyleFragments),
		PluginAssets: frag.PluginAssets,
		Unlinked:     unlinked,
	}, nil
}

// unlinkedReferences returns the resource ids referenced by the body that the
// profile does not associate with the note, each once. Such attachments still
// render when the resource exists.
func (s *Service) unlinkedReferences(ctx context.Context, note *models.Note) []string {
	ids, err := s.source.NoteResources(ctx, note.ID)
	if err != nil {
		s.logger.Warn("share: list note resources failed",
			slog.String("note_id", note.ID), slog.String("error", err.Error()))
		return nil
	}
	linked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		linked[id] = struct{}{}
	}

	var out []string
	for _, ref := range inliner.Scan(note.Body) {
		if _, ok := linked[ref.ResourceID]; ok {
			continue
		}
		linked[ref.ResourceID] = struct{}{}
		out = append(out, ref.ResourceID)
		s.logger.Warn("share: resource referenced but not attached to note",
			slog.String("note_id", note.ID), slog.String("resource_id", ref.ResourceID))
	}
	return out
}

// Options override the defaults of a share.
type Options struct {
	// Path is relative to the sink root. Empty means the sanitised title.
	Path string
	// Password is used for encrypted shares. Empty means a generated one.
	Password string
}

// Result describes a saved share.
type Result struct {
	NoteID   string   `json:"note_id"`
	Title    string   `json:"title"`
	Settings Settings `json:"settings"`
	Path     string   `json:"path"`
	Password string   `json:"password,omitempty"`
	Message  string   `json:"message"`
	HTML     string   `json:"-"`
}

// Build renders noteID and applies the gate when settings ask for it, without
// saving anything.
func (s *Service) Build(ctx context.Context, noteID string, settings Settings, password string) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	rendered, err := s.Render(ctx, noteID)
	if err != nil {
		return nil, err
	}

	res := &Result{
		NoteID:   noteID,
		Title:    rendered.Note.Title,
		Settings: settings,
		HTML:     rendered.HTML,
	}
	if !settings.Encrypted() {
		return res, nil
	}

	if password == "" {
		if password, err = gate.GeneratePassword(); err != nil {
			return nil, fmt.Errorf("share: %w", err)
		}
	}
	title := res.Title
	if title == "" {
		title = document.DefaultTitle
	}
	if res.HTML, err = s.gate.Wrap(title, rendered.HTML, password); err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	res.Password = password
	return res, nil
}

// Share builds the artifact for noteID and saves it to the sink.
func (s *Service) Share(ctx context.Context, noteID string, settings Settings, opts Options) (*Result, error) {
	res, err := s.Build(ctx, noteID, settings, opts.Password)
	if err != nil {
		return nil, err
	}
	if err := s.Save(res, opts.Path); err != nil {
		return nil, err
	}
	return res, nil
}

// Save writes a built result to path, or to the default file name for its
// title when path is empty, and fills in Path and Message.
func (s *Service) Save(res *Result, path string) error {
	if path == "" {
		path = DefaultFilename(res.Title)
	}

	if err := s.sink.Write(path, []byte(res.HTML)); err != nil {
		return fmt.Errorf("%s: %w: %w", s.strings.T("saveFailed"), apperr.ErrPersistence, err)
	}
	abs, err := s.sink.Abs(path)
	if err != nil {
		abs = path
	}
	res.Path = abs
	res.Message = s.successMessage(res)

	s.logger.Info("share: note shared",
		slog.String("note_id", res.NoteID),
		slog.String("type", res.Settings.Type),
		slog.String("path", res.Path))
	return nil
}

func (s *Service) successMessage(res *Result) string {
	var b strings.Builder
	b.WriteString(s.strings.T("shareSuccessMessage"))
	fmt.Fprintf(&b, "\n%s: %d", s.strings.T("validDays"), res.Settings.ExpirationDays)
	if res.Password != "" {
		fmt.Fprintf(&b, "\n%s: %s", s.strings.T("password"), res.Password)
	}
	fmt.Fprintf(&b, "\n%s %s", s.strings.T("saveSuccess"), res.Path)
	return b.String()
}
