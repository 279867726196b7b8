// Package locale loads UI strings from <locale>.json files with a fixed
// fallback locale. Files may carry comments and trailing commas.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/starford/noteshare/internal/apperr"
	"github.com/starford/noteshare/internal/fallback"
)

// DefaultFallback is the locale tried when the requested one cannot be loaded.
const DefaultFallback = "en"

//go:embed locales/*.json
var builtin embed.FS

// Table maps UI keys to display strings.
type Table map[string]string

// T returns the string for key, or key itself when it is not present.
func (t Table) T(key string) string {
	if s, ok := t[key]; ok && s != "" {
		return s
	}
	return key
}

// Normalize lowercases a locale and turns hyphens into underscores.
func Normalize(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "-", "_")
}

// Loader resolves locale tables from a directory of JSON files.
type Loader struct {
	fsys     fs.FS
	fallback string
	logger   *slog.Logger
}

// NewLoader creates a loader over fsys. An empty fallbackLocale means DefaultFallback.
func NewLoader(fsys fs.FS, fallbackLocale string, logger *slog.Logger) *Loader {
	if fallbackLocale == "" {
		fallbackLocale = DefaultFallback
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fsys: fsys, fallback: Normalize(fallbackLocale), logger: logger}
}

// NewDirLoader loads from dir on disk, or from the embedded locales when dir is empty.
func NewDirLoader(dir, fallbackLocale string, logger *slog.Logger) *Loader {
	if dir == "" {
		return NewLoader(Builtin(), fallbackLocale, logger)
	}
	return NewLoader(os.DirFS(dir), fallbackLocale, logger)
}

// Builtin returns the locales shipped with the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "locales")
	if err != nil {
		panic(fmt.Sprintf("locale: embedded locales: %v", err))
	}
	return sub
}

// Lookup returns the table for locale, falling back to the fallback locale and
// finally to an empty table. It never fails.
func (l *Loader) Lookup(locale string) Table {
	name := Normalize(locale)
	table, err := fallback.OrDefault(Table{},
		func() (Table, error) { return l.read(name) },
		func() (Table, error) {
			l.logger.Debug("locale: falling back",
				slog.String("locale", name),
				slog.String("fallback", l.fallback))
			return l.read(l.fallback)
		},
	)
	if err != nil {
		l.logger.Warn("locale: no strings loaded",
			slog.String("locale", name),
			slog.String("error", err.Error()))
	}
	return table
}

func (l *Loader) read(name string) (Table, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return nil, fmt.Errorf("%w: invalid locale name %q", apperr.ErrLocaleLoad, name)
	}
	file := name + ".json"
	data, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", apperr.ErrLocaleLoad, file, err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", apperr.ErrLocaleLoad, file, err)
	}
	var t Table
	if err := json.Unmarshal(std, &t); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", apperr.ErrLocaleLoad, file, err)
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}
