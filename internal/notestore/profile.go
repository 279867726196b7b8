package notestore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/starford/noteshare/internal/models"
	"github.com/starford/noteshare/internal/storage"
)

// Profile layout inside a Joplin profile directory.
const (
	DatabaseFile = "database.sqlite"
	ResourceDir  = "resources"
)

// Profile combines the profile database with its resources directory.
type Profile struct {
	*DB
	files storage.Provider
}

// NewProfile wraps an open database and a provider rooted at the resources directory.
func NewProfile(db *DB, files storage.Provider) *Profile {
	return &Profile{DB: db, files: files}
}

// OpenProfile opens the Joplin profile at dir read-only.
func OpenProfile(dir string) (*Profile, error) {
	files, err := storage.NewFS(filepath.Join(dir, ResourceDir))
	if err != nil {
		return nil, fmt.Errorf("notestore: resources dir: %w", err)
	}
	db, err := Open(filepath.Join(dir, DatabaseFile))
	if err != nil {
		return nil, err
	}
	return NewProfile(db, files), nil
}

// ResourceBinary reads the content of a resource from the resources directory.
func (p *Profile) ResourceBinary(ctx context.Context, id string) ([]byte, error) {
	meta, err := p.ResourceMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := p.files.Read(BinaryName(meta))
	if err != nil {
		return nil, fmt.Errorf("notestore: resource %s content: %w", id, err)
	}
	return data, nil
}

// PutBinary writes the content of a resource into the resources directory.
func (p *Profile) PutBinary(meta models.ResourceMeta, data []byte) error {
	return p.files.Write(BinaryName(&meta), data)
}

// BinaryName returns the file name Joplin uses for a resource's content.
func BinaryName(meta *models.ResourceMeta) string {
	if meta.FileExtension == "" {
		return meta.ID
	}
	return meta.ID + "." + meta.FileExtension
}
