package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/noteshare/internal/locale"
	"github.com/starford/noteshare/internal/markdown"
	"github.com/starford/noteshare/internal/notestore"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/storage"
	"github.com/starford/noteshare/internal/testutil"
)

func testServer(t *testing.T) (*Server, *notestore.Profile, *storage.FS) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_, profile := testutil.TestProfile(t)
	out, err := storage.EnsureFS(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	features := markdown.DefaultFeatures()
	renderer := markdown.NewRenderer(features, markdown.DefaultTheme(), markdown.NewGoldmark(features), markdown.NewPlain(), logger)
	table := locale.NewLoader(locale.Builtin(), locale.DefaultFallback, logger).Lookup("en")
	svc := share.NewService(profile, renderer, out, table, logger)

	return New(svc, out, 7), profile, out
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "render_note_html":
		result, err = srv.renderNoteHTML(ctx, req)
	case "share_note":
		result, err = srv.shareNote(ctx, req)
	case "export_note_json":
		result, err = srv.exportNoteJSON(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRenderNoteHTML(t *testing.T) {
	srv, p, _ := testServer(t)
	resID := testutil.NewID()
	note := testutil.AddNote(t, p, "Manual", "Read [manual](:/"+resID+")")
	testutil.AddResource(t, p, note.ID, resID, "application/pdf", "pdf", []byte("%PDF"))

	r := callTool(t, srv, "render_note_html", map[string]interface{}{"id": note.ID})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `<embed src="data:application/pdf;base64,JVBERg==" width="100%" height="600px" type="application/pdf">`) {
		t.Errorf("pdf not embedded:\n%s", text)
	}
}

func TestRenderNoteHTML_EncryptedReturnsPassword(t *testing.T) {
	srv, p, _ := testServer(t)
	note := testutil.AddNote(t, p, "t", "x")

	r := callTool(t, srv, "render_note_html", map[string]interface{}{"id": note.ID, "type": "encrypted", "password": "letmein1"})
	if !strings.HasPrefix(resultText(r), "password: letmein1\n\n<!DOCTYPE html>") {
		t.Errorf("result = %.80q", resultText(r))
	}
}

func TestRenderNoteHTML_Missing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "render_note_html", map[string]interface{}{"id": testutil.NewID()})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
	if !strings.HasPrefix(resultText(r), "note not found: ") {
		t.Errorf("error = %q", resultText(r))
	}
}

func TestShareNote(t *testing.T) {
	srv, p, out := testServer(t)
	note := testutil.AddNote(t, p, "Weekly: notes", "hello")

	r := callTool(t, srv, "share_note", map[string]interface{}{"id": note.ID, "expiration": float64(30)})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var res share.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := filepath.Join(out.Root(), "Weekly_ notes.html"); res.Path != want {
		t.Errorf("path = %q, want %q", res.Path, want)
	}
	if res.Settings.ExpirationDays != 30 {
		t.Errorf("expiration = %d, want 30", res.Settings.ExpirationDays)
	}
}

func TestShareNote_InvalidType(t *testing.T) {
	srv, p, _ := testServer(t)
	note := testutil.AddNote(t, p, "t", "x")
	r := callTool(t, srv, "share_note", map[string]interface{}{"id": note.ID, "type": "private"})
	if !r.IsError {
		t.Error("expected error for invalid share type")
	}
}

func TestExportNoteJSON(t *testing.T) {
	srv, p, out := testServer(t)
	note := testutil.AddNote(t, p, "t", "x")

	r := callTool(t, srv, "export_note_json", map[string]interface{}{"id": note.ID})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if _, err := os.Stat(filepath.Join(out.Root(), note.ID, note.ID+".json")); err != nil {
		t.Errorf("note json missing: %v", err)
	}

	r = callTool(t, srv, "export_note_json", map[string]interface{}{"id": note.ID, "dir": "../elsewhere"})
	if !r.IsError {
		t.Error("expected error for directory outside the share root")
	}
}

func TestShareGuideResource(t *testing.T) {
	srv, _, _ := testServer(t)
	contents, err := srv.readShareGuide(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("readShareGuide: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != ShareGuideURI || !strings.Contains(tc.Text, "encrypted") {
		t.Errorf("contents = %+v", contents)
	}
}
