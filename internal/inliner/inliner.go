// Package inliner replaces attachment references in a note body with
// self-contained markup carrying the attachment as a data URI.
package inliner

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"log/slog"
	"regexp"

	"github.com/starford/noteshare/internal/models"
	"github.com/starford/noteshare/internal/notestore"
)

// PDF embed size.
const (
	PDFWidth  = "100%"
	PDFHeight = "600px"
)

var referenceRe = regexp.MustCompile(`(!?\[.*?\])\(:/([a-f0-9]{32})\)`)

type translator interface {
	T(key string) string
}

// Inliner resolves references against a resource source.
type Inliner struct {
	resources notestore.ResourceSource
	strings   translator
	logger    *slog.Logger
}

// New creates an inliner. table provides the download and error texts.
func New(resources notestore.ResourceSource, table translator, logger *slog.Logger) *Inliner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inliner{resources: resources, strings: table, logger: logger}
}

// Scan returns every attachment reference in body, in order of appearance.
func Scan(body string) []models.AttachmentReference {
	matches := referenceRe.FindAllStringSubmatch(body, -1)
	refs := make([]models.AttachmentReference, 0, len(matches))
	for _, m := range matches {
		bracket := m[1]
		embed := bracket[0] == '!'
		label := bracket[1 : len(bracket)-1]
		if embed {
			label = bracket[2 : len(bracket)-1]
		}
		refs = append(refs, models.AttachmentReference{
			Match:      m[0],
			Label:      label,
			ResourceID: m[2],
			Embed:      embed,
		})
	}
	return refs
}

// Inline returns body with every reference replaced by its markup. A reference
// whose resource cannot be loaded becomes an error marker; other references
// and the surrounding text are unaffected.
func (in *Inliner) Inline(ctx context.Context, body string) string {
	refs := Scan(body)
	if len(refs) == 0 {
		return body
	}

	replacements := make([]string, len(refs))
	for i, ref := range refs {
		replacements[i] = in.markupFor(ctx, ref)
	}

	// ReplaceAllStringFunc visits the same matches, in the same order, as Scan.
	i := 0
	return referenceRe.ReplaceAllStringFunc(body, func(match string) string {
		out := match
		if i < len(replacements) && refs[i].Match == match {
			out = replacements[i]
		}
		i++
		return out
	})
}

func (in *Inliner) markupFor(ctx context.Context, ref models.AttachmentReference) string {
	blob, err := in.fetch(ctx, ref.ResourceID)
	if err != nil {
		in.logger.Warn("inliner: resource unavailable",
			slog.String("resource_id", ref.ResourceID),
			slog.String("error", err.Error()))
		return in.errorMarker(ref)
	}
	media := Classify(blob.Mime)
	in.logger.Debug("inliner: resource inlined",
		slog.String("resource_id", ref.ResourceID),
		slog.String("mime", blob.Mime),
		slog.String("media", media.String()),
		slog.Int("bytes", len(blob.Bytes)))
	return Markup(media, ref, blob, in.strings.T("downloadAttachment"))
}

// fetch loads metadata then content for one reference.
func (in *Inliner) fetch(ctx context.Context, id string) (*models.ResourceBlob, error) {
	meta, err := in.resources.ResourceMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	if meta.Mime == "" {
		return nil, fmt.Errorf("inliner: resource %s has no mime type", id)
	}
	data, err := in.resources.ResourceBinary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ResourceBlob{Mime: meta.Mime, FileExtension: meta.FileExtension, Bytes: data}, nil
}

func (in *Inliner) errorMarker(ref models.AttachmentReference) string {
	return fmt.Sprintf(`<p class="resource-error" data-resource-id="%s">%s</p>`,
		ref.ResourceID, html.EscapeString(in.strings.T("resourceUnavailable")))
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Markup renders the replacement for one resolved reference.
// downloadText labels the fallback link when the reference has no label.
func Markup(media Media, ref models.AttachmentReference, blob *models.ResourceBlob, downloadText string) string {
	uri := DataURI(blob.Mime, blob.Bytes)
	switch media {
	case MediaImage:
		return fmt.Sprintf(`<p><img src="%s" alt="%s"></p>`, uri, html.EscapeString(ref.Label))
	case MediaAudio:
		return fmt.Sprintf(`<p><audio controls src="%s">Your browser does not support the audio tag.</audio></p>`, uri)
	case MediaVideo:
		return fmt.Sprintf(`<p><video controls width="100%%"><source src="%s" type="%s">Your browser does not support the video tag.</video></p>`,
			uri, html.EscapeString(blob.Mime))
	case MediaPDF:
		return fmt.Sprintf(`<p><embed src="%s" width="%s" height="%s" type="application/pdf"></p>`, uri, PDFWidth, PDFHeight)
	default:
		text := ref.Label
		if text == "" {
			text = downloadText
		}
		return fmt.Sprintf(`<p><a href="%s" download="attachment.%s">%s</a></p>`,
			uri, html.EscapeString(blob.Extension()), html.EscapeString(text))
	}
}
