package internal

import (
	"log/slog"

	"github.com/starford/noteshare/internal/share"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *slog.Logger
	noHTTP bool
	watch  *watchTarget
}

type watchTarget struct {
	noteID   string
	settings share.Settings
	opts     share.Options
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the default JSON logger on stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithoutHTTP disables the HTTP server.
func WithoutHTTP() Option {
	return func(a *application) {
		a.noHTTP = true
	}
}

// WithWatch re-shares noteID whenever the profile database changes.
func WithWatch(noteID string, settings share.Settings, opts share.Options) Option {
	return func(a *application) {
		a.watch = &watchTarget{noteID: noteID, settings: settings, opts: opts}
	}
}
