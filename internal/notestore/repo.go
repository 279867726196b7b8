package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/models"
)

// GetNote returns the note with the given id, or apperr.ErrNotFound.
func (db *DB) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, parent_id, title, body, created_time, updated_time
		FROM notes WHERE id = ?
	`, id).Scan(&n.ID, &n.ParentID, &n.Title, &n.Body, &n.CreatedTime, &n.UpdatedTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notestore: note %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("notestore: get note %s: %w", id, err)
	}
	return &n, nil
}

// NoteResources returns the ids of resources associated with a note.
func (db *DB) NoteResources(ctx context.Context, noteID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT resource_id FROM note_resources
		WHERE note_id = ? AND is_associated = 1
		ORDER BY id
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("notestore: note resources: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ResourceMeta returns the metadata row for a resource, or apperr.ErrNotFound.
func (db *DB) ResourceMeta(ctx context.Context, id string) (*models.ResourceMeta, error) {
	var r models.ResourceMeta
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, title, mime, filename, file_extension, size, created_time, updated_time
		FROM resources WHERE id = ?
	`, id).Scan(&r.ID, &r.Title, &r.Mime, &r.Filename, &r.FileExtension, &r.Size, &r.CreatedTime, &r.UpdatedTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notestore: resource %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("notestore: get resource %s: %w", id, err)
	}
	return &r, nil
}

// PutNote inserts or replaces a note.
func (db *DB) PutNote(ctx context.Context, n models.Note) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO notes (id, parent_id, title, body, created_time, updated_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_id    = excluded.parent_id,
			title        = excluded.title,
			body         = excluded.body,
			updated_time = excluded.updated_time
	`, n.ID, n.ParentID, n.Title, n.Body, n.CreatedTime, n.UpdatedTime)
	if err != nil {
		return fmt.Errorf("notestore: put note: %w", err)
	}
	return nil
}

// PutResource inserts or replaces a resource row and associates it with noteID
// when noteID is not empty.
func (db *DB) PutResource(ctx context.Context, noteID string, r models.ResourceMeta) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resources (id, title, mime, filename, file_extension, size, created_time, updated_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title          = excluded.title,
			mime           = excluded.mime,
			filename       = excluded.filename,
			file_extension = excluded.file_extension,
			size           = excluded.size,
			updated_time   = excluded.updated_time
	`, r.ID, r.Title, r.Mime, r.Filename, r.FileExtension, r.Size, r.CreatedTime, r.UpdatedTime)
	if err != nil {
		return fmt.Errorf("notestore: put resource: %w", err)
	}

	if noteID != "" {
		_, _ = tx.ExecContext(ctx, `DELETE FROM note_resources WHERE note_id = ? AND resource_id = ?`, noteID, r.ID)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO note_resources (note_id, resource_id, is_associated, last_seen_time)
			VALUES (?, ?, 1, ?)
		`, noteID, r.ID, r.UpdatedTime)
		if err != nil {
			return fmt.Errorf("notestore: associate resource: %w", err)
		}
	}

	return tx.Commit()
}
