package internal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/noteshare/internal/locale"
	"github.com/starford/noteshare/internal/markdown"
	"github.com/starford/noteshare/internal/notestore"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/storage"
)

// Components are the long-lived objects shared by every command.
type Components struct {
	Config  *Config
	Logger  *slog.Logger
	Profile *notestore.Profile
	Output  *storage.FS
	Share   *share.Service
}

// NewLogger returns a JSON logger for servers or a text logger for one-shot
// commands.
func NewLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Build opens the configured profile and wires the share pipeline.
func Build(cfg *Config, logger *slog.Logger) (*Components, error) {
	profile, err := notestore.OpenProfile(cfg.Profile.Path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}

	out, err := storage.EnsureFS(cfg.Share.OutputDir)
	if err != nil {
		profile.Close()
		return nil, fmt.Errorf("init output dir: %w", err)
	}

	features := cfg.Markdown.Features()
	primary := markdown.NewGoldmark(features)
	if missing := primary.Unsupported(); len(missing) > 0 {
		logger.Info("markdown: plugins enabled but not rendered", slog.Any("plugins", missing))
	}
	renderer := markdown.NewRenderer(features, cfg.Markdown.Theme, primary, markdown.NewPlain(), logger)

	table := locale.NewDirLoader(cfg.Locale.Dir, cfg.Locale.Fallback, logger).Lookup(cfg.Locale.Name)

	logger.Debug("components: ready",
		slog.String("profile", cfg.Profile.Path),
		slog.String("output_dir", out.Root()),
		slog.String("locale", locale.Normalize(cfg.Locale.Name)),
		slog.Any("plugins", features.Names()))

	return &Components{
		Config:  cfg,
		Logger:  logger,
		Profile: profile,
		Output:  out,
		Share:   share.NewService(profile, renderer, out, table, logger),
	}, nil
}

// Close releases the profile database.
func (c *Components) Close() error {
	return c.Profile.Close()
}
