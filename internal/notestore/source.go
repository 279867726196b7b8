// Package notestore reads notes and attachments from a Joplin profile: the
// SQLite database for metadata and the resources directory for binaries.
package notestore

import (
	"context"

	"github.com/starford/noteshare/internal/models"
)

// NoteSource resolves notes and the resources attached to them.
type NoteSource interface {
	GetNote(ctx context.Context, id string) (*models.Note, error)
	NoteResources(ctx context.Context, noteID string) ([]string, error)
}

// ResourceSource resolves attachment metadata and content.
type ResourceSource interface {
	ResourceMeta(ctx context.Context, id string) (*models.ResourceMeta, error)
	ResourceBinary(ctx context.Context, id string) ([]byte, error)
}

// Source is the combined read-only view used by the share pipeline.
type Source interface {
	NoteSource
	ResourceSource
}

// Verify *Profile satisfies Source at compile time.
var _ Source = (*Profile)(nil)
