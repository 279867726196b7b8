package inliner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/locale"
	"github.com/starford/noteshare/internal/models"
)

const idA = "0123456789abcdef0123456789abcdef"
const idB = "fedcba9876543210fedcba9876543210"

type fakeResource struct {
	meta models.ResourceMeta
	data []byte
	err  error
}

// fakeSource is an in-memory ResourceSource that counts calls.
type fakeSource struct {
	resources   map[string]fakeResource
	metaCalls   int
	binaryCalls int
}

func (f *fakeSource) ResourceMeta(_ context.Context, id string) (*models.ResourceMeta, error) {
	f.metaCalls++
	r, ok := f.resources[id]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", id, apperr.ErrNotFound)
	}
	m := r.meta
	return &m, nil
}

func (f *fakeSource) ResourceBinary(_ context.Context, id string) ([]byte, error) {
	f.binaryCalls++
	r, ok := f.resources[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.data, nil
}

func newInliner(src *fakeSource) *Inliner {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(src, locale.Table{"downloadAttachment": "Download attachment", "resourceUnavailable": "Attachment unavailable"}, logger)
}

func withResource(id, mime, ext string, data []byte) *fakeSource {
	return &fakeSource{resources: map[string]fakeResource{
		id: {meta: models.ResourceMeta{ID: id, Mime: mime, FileExtension: ext}, data: data},
	}}
}

func TestScan(t *testing.T) {
	body := "a ![img](:/" + idA + ") b [doc](:/" + idB + ") c [bad](:/xyz)"
	want := []models.AttachmentReference{
		{Match: "![img](:/" + idA + ")", Label: "img", ResourceID: idA, Embed: true},
		{Match: "[doc](:/" + idB + ")", Label: "doc", ResourceID: idB},
	}
	if diff := cmp.Diff(want, Scan(body)); diff != "" {
		t.Errorf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_RejectsUppercaseAndShortIDs(t *testing.T) {
	body := "[x](:/0123456789ABCDEF0123456789ABCDEF) [y](:/0123)"
	if got := Scan(body); len(got) != 0 {
		t.Errorf("Scan = %v, want none", got)
	}
}

func TestInline_IdentityWithoutReferences(t *testing.T) {
	src := &fakeSource{}
	bodies := []string{
		"",
		"# Title\n\nplain text with [a link](https://example.com)",
		"![image](https://example.com/x.png) and [note](:/notahexid)",
	}
	for _, body := range bodies {
		if got := newInliner(src).Inline(context.Background(), body); got != body {
			t.Errorf("Inline(%q) = %q, want unchanged", body, got)
		}
	}
	if src.metaCalls != 0 {
		t.Errorf("metaCalls = %d, want 0", src.metaCalls)
	}
}

func TestInline_ImageScenario(t *testing.T) {
	src := withResource(idA, "image/png", "png", []byte{0x89, 'P', 'N', 'G'})
	body := "See ![img](:/" + idA + ")"

	got := newInliner(src).Inline(context.Background(), body)

	want := `See <p><img src="data:image/png;base64,iVBORw==" alt="img"></p>`
	if got != want {
		t.Errorf("Inline = %q, want %q", got, want)
	}
	if n := strings.Count(got, `<p><img src="data:image/png;base64,`); n != 1 {
		t.Errorf("img fragments = %d, want 1", n)
	}
}

func TestInline_PDFScenario(t *testing.T) {
	src := withResource(idA, "application/pdf", "pdf", []byte("%PDF"))
	got := newInliner(src).Inline(context.Background(), "See ![img](:/"+idA+")")

	want := `See <p><embed src="data:application/pdf;base64,JVBERg==" width="100%" height="600px" type="application/pdf"></p>`
	if got != want {
		t.Errorf("Inline = %q, want %q", got, want)
	}
}

func TestInline_MarkupByMime(t *testing.T) {
	cases := []struct {
		mime   string
		prefix string
	}{
		{"image/jpeg", "<p><img "},
		{"image/svg+xml", "<p><img "},
		{"audio/mpeg", "<p><audio controls "},
		{"video/mp4", "<p><video controls "},
		{"application/pdf", "<p><embed "},
		{"application/pdf+x", "<p><a "},
		{"application/zip", "<p><a "},
		{"text/plain", "<p><a "},
	}
	for _, tc := range cases {
		src := withResource(idA, tc.mime, "dat", []byte("x"))
		got := newInliner(src).Inline(context.Background(), "[f](:/"+idA+")")
		if !strings.HasPrefix(got, tc.prefix) {
			t.Errorf("mime %q: got %q, want prefix %q", tc.mime, got, tc.prefix)
		}
	}
}

func TestClassify_Priority(t *testing.T) {
	cases := map[string]Media{
		"image/png":         MediaImage,
		"IMAGE/PNG":         MediaImage,
		"audio/ogg":         MediaAudio,
		"video/webm":        MediaVideo,
		"application/pdf":   MediaPDF,
		"application/x-pdf": MediaOther,
		"":                  MediaOther,
	}
	for mime, want := range cases {
		if got := Classify(mime); got != want {
			t.Errorf("Classify(%q) = %v, want %v", mime, got, want)
		}
	}
}

func TestInline_VideoCarriesType(t *testing.T) {
	src := withResource(idA, "video/mp4", "mp4", []byte("v"))
	got := newInliner(src).Inline(context.Background(), "[clip](:/"+idA+")")
	if !strings.Contains(got, `<source src="data:video/mp4;base64,dg==" type="video/mp4">`) {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "does not support the video tag") {
		t.Errorf("missing fallback text: %q", got)
	}
}

func TestInline_DownloadFallbackExtension(t *testing.T) {
	src := withResource(idA, "application/octet-stream", "", []byte("z"))
	got := newInliner(src).Inline(context.Background(), "[](:/"+idA+")")
	want := `<p><a href="data:application/octet-stream;base64,eg==" download="attachment.bin">Download attachment</a></p>`
	if got != want {
		t.Errorf("Inline = %q, want %q", got, want)
	}
}

func TestInline_LabelIsEscaped(t *testing.T) {
	src := withResource(idA, "image/gif", "gif", []byte("g"))
	got := newInliner(src).Inline(context.Background(), `![a "quoted" <b>](:/`+idA+`)`)
	if !strings.Contains(got, `alt="a &#34;quoted&#34; &lt;b&gt;"`) {
		t.Errorf("got %q", got)
	}
}

func TestInline_DuplicatesFetchedIndependently(t *testing.T) {
	src := withResource(idA, "image/png", "png", []byte("p"))
	ref := "![x](:/" + idA + ")"
	got := newInliner(src).Inline(context.Background(), ref+" and "+ref)

	if strings.Contains(got, ref) {
		t.Errorf("reference left in output: %q", got)
	}
	if n := strings.Count(got, "<p><img "); n != 2 {
		t.Errorf("img count = %d, want 2", n)
	}
	if src.metaCalls != 2 || src.binaryCalls != 2 {
		t.Errorf("calls = (%d, %d), want (2, 2)", src.metaCalls, src.binaryCalls)
	}
}

func TestInline_FailureIsIsolated(t *testing.T) {
	src := &fakeSource{resources: map[string]fakeResource{
		idA: {meta: models.ResourceMeta{ID: idA, Mime: "image/png", FileExtension: "png"}, data: []byte("ok")},
		idB: {meta: models.ResourceMeta{ID: idB, Mime: "image/png", FileExtension: "png"}, err: errors.New("disk on fire")},
	}}
	missing := "00000000000000000000000000000000"
	body := "head ![a](:/" + idA + ") mid ![b](:/" + idB + ") [c](:/" + missing + ") tail"

	got := newInliner(src).Inline(context.Background(), body)

	if !strings.HasPrefix(got, "head <p><img src=\"data:image/png;base64,b2s=\" alt=\"a\"></p> mid ") {
		t.Errorf("first reference not inlined: %q", got)
	}
	if !strings.HasSuffix(got, " tail") {
		t.Errorf("tail altered: %q", got)
	}
	for _, id := range []string{idB, missing} {
		marker := `<p class="resource-error" data-resource-id="` + id + `">Attachment unavailable</p>`
		if !strings.Contains(got, marker) {
			t.Errorf("missing error marker for %s in %q", id, got)
		}
	}
}

func TestInline_EmptyMimeIsFailure(t *testing.T) {
	src := withResource(idA, "", "png", []byte("x"))
	got := newInliner(src).Inline(context.Background(), "[x](:/"+idA+")")
	if !strings.Contains(got, `class="resource-error"`) {
		t.Errorf("got %q, want error marker", got)
	}
	if src.binaryCalls != 0 {
		t.Errorf("binaryCalls = %d, want 0", src.binaryCalls)
	}
}
