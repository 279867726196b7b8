// Package gate wraps an assembled document in a password prompt page.
//
// The document is only base64 encoded and the password is stored in the page
// in plain text. The gate keeps casual readers out; it is not encryption.
package gate

import (
	"crypto/rand"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"math/big"
	"strings"
	"text/template"

	"github.com/starford/noteshare/internal/apperr"
)

// PasswordLength is the length of generated passwords.
const PasswordLength = 8

const passwordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

//go:embed gate.html.tmpl
var gateTmpl string

var page = template.Must(template.New("gate").Parse(gateTmpl))

// Translator resolves user-facing strings.
type Translator interface {
	T(key string) string
}

// Wrapper builds password-gated pages.
type Wrapper struct {
	strings Translator
}

// New creates a Wrapper using t for the prompt texts.
func New(t Translator) *Wrapper {
	return &Wrapper{strings: t}
}

type pageData struct {
	Title         string
	Encrypted     string
	Heading       string
	Prompt        string
	Placeholder   string
	Button        string
	Payload       string
	Password      string
	WrongPassword string
	DecryptFailed string
}

// Encode returns the payload form of document as embedded in the page.
func Encode(document string) string {
	return base64.StdEncoding.EncodeToString([]byte(document))
}

// Wrap returns a page that reveals document once password is typed exactly.
func (w *Wrapper) Wrap(title, document, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("gate: %w: empty password", apperr.ErrInvalidSettings)
	}

	data := pageData{
		Title:       title,
		Encrypted:   html.EscapeString(w.strings.T("encrypted")),
		Heading:     html.EscapeString(w.strings.T("encryptedNoteTitle")),
		Prompt:      html.EscapeString(w.strings.T("enterPasswordPrompt")),
		Placeholder: html.EscapeString(w.strings.T("passwordPlaceholder")),
		Button:      html.EscapeString(w.strings.T("decrypt")),
	}

	var err error
	if data.Payload, err = jsLiteral(Encode(document)); err != nil {
		return "", err
	}
	if data.Password, err = jsLiteral(password); err != nil {
		return "", err
	}
	if data.WrongPassword, err = jsLiteral(w.strings.T("wrongPassword")); err != nil {
		return "", err
	}
	if data.DecryptFailed, err = jsLiteral(w.strings.T("decryptFailed")); err != nil {
		return "", err
	}

	var b strings.Builder
	if err := page.Execute(&b, data); err != nil {
		return "", fmt.Errorf("gate: render page: %w", err)
	}
	return b.String(), nil
}

// jsLiteral quotes s as a JavaScript string. json.Marshal escapes <, > and &,
// so the result cannot close the surrounding script element.
func jsLiteral(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("gate: encode string: %w", err)
	}
	return string(b), nil
}

// GeneratePassword returns PasswordLength random base36 characters.
func GeneratePassword() (string, error) {
	limit := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, PasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("gate: generate password: %w", err)
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
