package share

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/storage"
)

// ExportResult lists what ExportJSON wrote.
type ExportResult struct {
	NoteFile  string   `json:"note_file"`
	Resources []string `json:"resources"`
	Skipped   []string `json:"skipped,omitempty"`
}

// ExportJSON writes the raw note, the metadata of each attached resource and
// the resource binaries to sink. A resource that cannot be read is logged and
// skipped.
func (s *Service) ExportJSON(ctx context.Context, noteID string, sink storage.Provider) (*ExportResult, error) {
	note, err := s.source.GetNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("share: get note: %w", err)
	}

	res := &ExportResult{NoteFile: note.ID + ".json", Resources: []string{}}
	if err := writeJSON(sink, res.NoteFile, note); err != nil {
		return nil, err
	}

	ids, err := s.source.NoteResources(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("share: list note resources: %w", err)
	}

	for _, id := range ids {
		if err := s.exportResource(ctx, id, sink); err != nil {
			s.logger.Warn("share: export resource failed",
				slog.String("note_id", noteID),
				slog.String("resource_id", id),
				slog.String("error", err.Error()))
			res.Skipped = append(res.Skipped, id)
			continue
		}
		res.Resources = append(res.Resources, id)
	}

	s.logger.Info("share: note exported",
		slog.String("note_id", noteID),
		slog.Int("resources", len(res.Resources)),
		slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (s *Service) exportResource(ctx context.Context, id string, sink storage.Provider) error {
	meta, err := s.source.ResourceMeta(ctx, id)
	if err != nil {
		return err
	}
	data, err := s.source.ResourceBinary(ctx, id)
	if err != nil {
		return err
	}
	if err := writeJSON(sink, "resource_"+id+".json", meta); err != nil {
		return err
	}
	if err := sink.Write(path.Join("resources", id), data); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
	}
	return nil
}

func writeJSON(sink storage.Provider, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("share: encode %s: %w", name, err)
	}
	if err := sink.Write(name, data); err != nil {
		return fmt.Errorf("share: write %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	return nil
}
