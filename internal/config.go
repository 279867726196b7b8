package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/noteshare/internal/locale"
	"github.com/starford/noteshare/internal/markdown"
	"github.com/starford/noteshare/internal/share"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config is the whole noteshare configuration file.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Profile  ProfileConfig     `yaml:"profile"`
	Locale   LocaleConfig      `yaml:"locale"`
	Markdown MarkdownConfig    `yaml:"markdown"`
	Share    ShareConfig       `yaml:"share"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate applies defaults and checks every section.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Profile.Validate(); err != nil {
		return err
	}
	if err := c.Locale.Validate(); err != nil {
		return err
	}
	if err := c.Markdown.Validate(); err != nil {
		return err
	}
	if err := c.Share.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig covers process-wide settings.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate checks the log level and HTTP section.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig configures the preview and share API listener.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the listen address for the configured port.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks the port range.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ProfileConfig points at a Joplin profile directory holding database.sqlite
// and the resources folder.
type ProfileConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the profile configuration.
func (c *ProfileConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// LocaleConfig selects the user-facing language.
//
// Dir is a directory of <locale>.json files; when empty the locales compiled
// into the binary are used.
type LocaleConfig struct {
	Name     string `yaml:"name"`
	Dir      string `yaml:"dir"`
	Fallback string `yaml:"fallback"`
}

// Validate validates the locale configuration.
func (c *LocaleConfig) Validate() error {
	if c.Fallback == "" {
		c.Fallback = locale.DefaultFallback
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
	)
}

// MarkdownConfig holds plugin toggles and the render theme.
type MarkdownConfig struct {
	Plugins map[string]bool `yaml:"plugins"`
	Theme   markdown.Theme  `yaml:"theme"`
}

// Features returns the default plugin set with the configured overrides applied.
func (c *MarkdownConfig) Features() markdown.Features {
	return markdown.DefaultFeatures().Merge(c.Plugins)
}

// Validate validates the markdown configuration.
func (c *MarkdownConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Plugins, validation.By(knownPlugins)),
	); err != nil {
		return err
	}
	if err := validation.Validate(c.Theme.CodeStyle, validation.By(knownCodeStyle)); err != nil {
		return fmt.Errorf("theme: code_style: %w", err)
	}
	return nil
}

func knownPlugins(value interface{}) error {
	plugins, _ := value.(map[string]bool)
	known := markdown.DefaultFeatures()
	var unknown []string
	for name := range plugins {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown plugins: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func knownCodeStyle(value interface{}) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if _, ok := styles.Registry[name]; !ok {
		return errors.New("unknown chroma style")
	}
	return nil
}

// ShareConfig controls where artifacts are written and their default validity.
type ShareConfig struct {
	OutputDir             string `yaml:"output_dir"`
	DefaultExpirationDays int    `yaml:"default_expiration_days"`
}

// Validate validates the share configuration.
func (c *ShareConfig) Validate() error {
	if c.DefaultExpirationDays == 0 {
		c.DefaultExpirationDays = share.DefaultExpirationDays
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.DefaultExpirationDays,
			validation.Min(share.MinExpirationDays), validation.Max(share.MaxExpirationDays)),
	)
}

// AuthConfig guards the /api routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate defaults Mode to disabled and requires a token in token mode.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled reports whether API requests need a bearer token.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns the values used when the file omits a setting.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Profile: ProfileConfig{
			Path: "./profile",
		},
		Locale: LocaleConfig{
			Name:     "en",
			Fallback: locale.DefaultFallback,
		},
		Markdown: MarkdownConfig{
			Theme: markdown.DefaultTheme(),
		},
		Share: ShareConfig{
			OutputDir:             "./shared",
			DefaultExpirationDays: share.DefaultExpirationDays,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
