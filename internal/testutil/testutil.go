// Package testutil provides shared test helpers for building Joplin profiles.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/noteshare/internal/models"
	"github.com/starford/noteshare/internal/notestore"
	"github.com/starford/noteshare/internal/storage"
)

// NewID returns a Joplin-style 32-character hex id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TestProfile creates a temporary writable Joplin profile that is cleaned up
// with the test. It returns the profile directory and the opened profile.
func TestProfile(t *testing.T) (string, *notestore.Profile) {
	t.Helper()
	dir := t.TempDir()
	resDir := filepath.Join(dir, notestore.ResourceDir)
	if err := os.MkdirAll(resDir, 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := storage.NewFS(resDir)
	if err != nil {
		t.Fatal(err)
	}
	db, err := notestore.Create(filepath.Join(dir, notestore.DatabaseFile))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return dir, notestore.NewProfile(db, files)
}

// AddNote stores a note with a fresh id and returns it.
func AddNote(t *testing.T, p *notestore.Profile, title, body string) models.Note {
	t.Helper()
	n := models.Note{ID: NewID(), Title: title, Body: body, CreatedTime: 1700000000000, UpdatedTime: 1700000000000}
	if err := p.PutNote(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	return n
}

// AddResource stores a resource and its content under the given id, attached to noteID.
func AddResource(t *testing.T, p *notestore.Profile, noteID, id, mime, ext string, data []byte) models.ResourceMeta {
	t.Helper()
	meta := models.ResourceMeta{
		ID:            id,
		Title:         "file." + ext,
		Mime:          mime,
		Filename:      "file." + ext,
		FileExtension: ext,
		Size:          int64(len(data)),
		CreatedTime:   1700000000000,
		UpdatedTime:   1700000000000,
	}
	ctx := context.Background()
	if err := p.PutResource(ctx, noteID, meta); err != nil {
		t.Fatal(err)
	}
	if err := p.PutBinary(meta, data); err != nil {
		t.Fatal(err)
	}
	return meta
}
