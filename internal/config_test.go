package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgconfig "github.com/starford/noteshare/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestMarkdownConfig_UnknownPlugin(t *testing.T) {
	cfg := MarkdownConfig{Plugins: map[string]bool{"toc": false, "wavedrom": true}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("unknown plugin should fail validation")
	}
	if !strings.Contains(err.Error(), "wavedrom") {
		t.Errorf("error should name the plugin: %v", err)
	}
}

func TestMarkdownConfig_UnknownCodeStyle(t *testing.T) {
	cfg := MarkdownConfig{}
	cfg.Theme.CodeStyle = "no-such-style"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown code style should fail validation")
	}
	cfg.Theme.CodeStyle = "monokai"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("monokai should be accepted: %v", err)
	}
}

func TestMarkdownConfig_FeaturesOverrides(t *testing.T) {
	cfg := MarkdownConfig{Plugins: map[string]bool{"toc": false, "typographer": true}}
	f := cfg.Features()
	if f.Enabled("toc") || !f.Enabled("typographer") || !f.Enabled("footnote") {
		t.Errorf("features = %v", f.Names())
	}
}

func TestShareConfig_Expiration(t *testing.T) {
	cfg := ShareConfig{OutputDir: "out"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.DefaultExpirationDays != 7 {
		t.Errorf("default expiration = %d, want 7", cfg.DefaultExpirationDays)
	}
	cfg.DefaultExpirationDays = 400
	if err := cfg.Validate(); err == nil {
		t.Fatal("expiration above 365 should fail")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("NOTESHARE_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  log_level: debug
  http:
    port: 9090
profile:
  path: /tmp/profile
locale:
  name: zh-CN
markdown:
  plugins:
    softbreaks: true
  theme:
    code_style: dracula
share:
  output_dir: /tmp/out
auth:
  mode: token
  token: ${NOTESHARE_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want s3cret", cfg.Auth.Token)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Locale.Fallback != "en" {
		t.Errorf("fallback = %q, want en", cfg.Locale.Fallback)
	}
	if cfg.Markdown.Theme.CodeStyle != "dracula" || cfg.Markdown.Theme.BackgroundColor != "#ffffff" {
		t.Errorf("theme = %+v", cfg.Markdown.Theme)
	}
	if !cfg.Markdown.Features().Enabled("softbreaks") {
		t.Error("softbreaks override not applied")
	}
}

func TestLoadOptional_ValidatesOverriddenLocale(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	cfg := NewDefaultConfig()
	err := pkgconfig.LoadOptional(missing, cfg, func(c *Config) { c.Locale.Name = "" })
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("err = %v, want locale name validation failure", err)
	}

	cfg = NewDefaultConfig()
	if err := pkgconfig.LoadOptional(missing, cfg, func(c *Config) { c.Profile.Path = "/srv/joplin" }); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Profile.Path != "/srv/joplin" {
		t.Errorf("profile path = %q", cfg.Profile.Path)
	}
}
