package watch

import (
	"context"
	"log/slog"

	"github.com/starford/noteshare/internal/checksum"
	"github.com/starford/noteshare/internal/gate"
	"github.com/starford/noteshare/internal/share"
)

// Resharer rebuilds one note's artifact and saves it only when its content
// changed since the last save.
type Resharer struct {
	svc      *share.Service
	noteID   string
	settings share.Settings
	opts     share.Options
	logger   *slog.Logger
	last     string
	onSaved  func(*share.Result)
}

// NewResharer prepares repeated shares of noteID. An encrypted share without
// a password gets one generated here so that every rebuild uses the same one.
func NewResharer(svc *share.Service, noteID string, settings share.Settings, opts share.Options, logger *slog.Logger) (*Resharer, error) {
	if settings.Encrypted() && opts.Password == "" {
		pw, err := gate.GeneratePassword()
		if err != nil {
			return nil, err
		}
		opts.Password = pw
	}
	return &Resharer{
		svc:      svc,
		noteID:   noteID,
		settings: settings,
		opts:     opts,
		logger:   logger,
	}, nil
}

// OnSaved registers fn to run after every write.
func (r *Resharer) OnSaved(fn func(*share.Result)) {
	r.onSaved = fn
}

// Reshare builds the note and saves it if it differs from the previous save.
// It reports whether a file was written.
func (r *Resharer) Reshare(ctx context.Context) (*share.Result, bool, error) {
	res, err := r.svc.Build(ctx, r.noteID, r.settings, r.opts.Password)
	if err != nil {
		return nil, false, err
	}
	sum := checksum.Sum([]byte(res.HTML))
	if sum == r.last {
		r.logger.Debug("watch: note unchanged", slog.String("note_id", r.noteID))
		return res, false, nil
	}
	if err := r.svc.Save(res, r.opts.Path); err != nil {
		return nil, false, err
	}
	r.last = sum
	if r.onSaved != nil {
		r.onSaved(res)
	}
	return res, true, nil
}

// OnChange is a Watch callback that logs failures instead of returning them.
func (r *Resharer) OnChange(ctx context.Context) {
	res, written, err := r.Reshare(ctx)
	if err != nil {
		r.logger.Warn("watch: reshare failed",
			slog.String("note_id", r.noteID), slog.String("error", err.Error()))
		return
	}
	if written {
		r.logger.Info("watch: note reshared",
			slog.String("note_id", r.noteID), slog.String("path", res.Path))
	}
}
