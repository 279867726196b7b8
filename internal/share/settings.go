package share

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/noteshare/internal/apperr"
)

// Share types.
const (
	TypePublic    = "public"
	TypeEncrypted = "encrypted"
)

// Expiration bounds in days.
const (
	DefaultExpirationDays = 7
	MinExpirationDays     = 1
	MaxExpirationDays     = 365
)

// Settings describe how a note is shared.
type Settings struct {
	Type           string `json:"type"`
	ExpirationDays int    `json:"expiration"`
}

// Validate checks the share type and expiration range.
func (s Settings) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required, validation.In(TypePublic, TypeEncrypted)),
		validation.Field(&s.ExpirationDays, validation.Required,
			validation.Min(MinExpirationDays), validation.Max(MaxExpirationDays)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidSettings, err)
	}
	return nil
}

// Encrypted reports whether the share is password gated.
func (s Settings) Encrypted() bool {
	return s.Type == TypeEncrypted
}

// ParseExpiration converts user input to days. Unparsable or zero input
// yields DefaultExpirationDays.
func ParseExpiration(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == 0 {
		return DefaultExpirationDays
	}
	return n
}

// ParseSettings builds validated Settings from raw user input. An empty type
// means public.
func ParseSettings(shareType, expiration string) (Settings, error) {
	s := Settings{
		Type:           strings.ToLower(strings.TrimSpace(shareType)),
		ExpirationDays: ParseExpiration(expiration),
	}
	if s.Type == "" {
		s.Type = TypePublic
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// UntitledName is used for notes without a title.
const UntitledName = "Untitled"

// SanitizeFilename replaces characters that are not allowed in file names.
func SanitizeFilename(title string) string {
	return unsafeFilenameChars.ReplaceAllString(title, "_")
}

// DefaultFilename is the artifact name used when the caller gives none.
func DefaultFilename(title string) string {
	if title == "" {
		title = UntitledName
	}
	return SanitizeFilename(title) + ".html"
}
