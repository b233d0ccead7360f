// Package i18n provides the UI label translator of the site, backed by
// go-i18n message files embedded in the binary.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/kevinypfan/my-site/locale"
)

// Messages holds the built-in active.<locale>.toml message files.
//
//go:embed messages/*.toml
var Messages embed.FS

// Translator maps a label key to display text in one locale.
type Translator interface {
	Text(key string) string
}

// TranslatorFunc adapts a plain function to Translator.
type TranslatorFunc func(key string) string

// Text calls f(key).
func (f TranslatorFunc) Text(key string) string {
	return f(key)
}

// Bundle holds every loaded message file.
type Bundle struct {
	bundle *goi18n.Bundle
	def    locale.Code
	keys   []string
	log    *slog.Logger
}

// NewBundle loads all *.toml message files from fsys (pass nil for the
// embedded Messages). def is the language used when a locale lacks a message.
func NewBundle(fsys fs.FS, def locale.Code, logger *slog.Logger) (*Bundle, error) {
	if fsys == nil {
		sub, err := fs.Sub(Messages, "messages")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	if def == "" {
		def = locale.DefaultCode
	}
	if logger == nil {
		logger = slog.Default()
	}
	tag, err := language.Parse(string(def))
	if err != nil {
		return nil, fmt.Errorf("i18n: default locale %q: %w", def, err)
	}

	b := goi18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("i18n: no message files found")
	}
	var keys []string
	for _, name := range files {
		mf, err := b.LoadMessageFileFS(fsys, path.Clean(name))
		if err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", name, err)
		}
		if mf.Tag.String() == tag.String() {
			for _, m := range mf.Messages {
				keys = append(keys, m.ID)
			}
		}
	}
	sort.Strings(keys)
	return &Bundle{bundle: b, def: def, keys: keys, log: logger}, nil
}

// Keys returns the message IDs of the default locale, sorted. Every other
// locale is expected to carry the same set.
func (b *Bundle) Keys() []string {
	return b.keys
}

// Locales returns the locales that have a message file, default first.
func (b *Bundle) Locales() []locale.Code {
	codes := []locale.Code{b.def}
	for _, tag := range b.bundle.LanguageTags() {
		c := locale.Code(tag.String())
		if c != b.def {
			codes = append(codes, c)
		}
	}
	return codes
}

// For returns a Translator for code. Unknown keys are returned unchanged and
// logged as a warning.
func (b *Bundle) For(code locale.Code) Translator {
	return &translator{
		localizer: goi18n.NewLocalizer(b.bundle, string(code), string(b.def)),
		code:      code,
		log:       b.log,
	}
}

// Strict returns a Translator that reports missing keys instead of hiding them.
func (b *Bundle) Strict(code locale.Code) *StrictTranslator {
	return &StrictTranslator{localizer: goi18n.NewLocalizer(b.bundle, string(code)), code: code}
}

type translator struct {
	localizer *goi18n.Localizer
	code      locale.Code
	log       *slog.Logger
}

func (t *translator) Text(key string) string {
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if msg != "" {
		if err != nil {
			t.log.Debug("label served from default locale", "key", key, "locale", t.code)
		}
		return msg
	}
	t.log.Warn("unknown label key", "key", key, "locale", t.code, "error", err)
	return key
}

// StrictTranslator looks labels up in exactly one locale.
type StrictTranslator struct {
	localizer *goi18n.Localizer
	code      locale.Code
}

// Lookup returns the label for key or an error when the locale has no such message.
func (t *StrictTranslator) Lookup(key string) (string, error) {
	msg, tag, err := t.localizer.LocalizeWithTag(&goi18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return "", fmt.Errorf("i18n: %s: label %q: %w", t.code, key, err)
	}
	if tag.String() != string(t.code) {
		return "", fmt.Errorf("i18n: %s: label %q only exists in %s", t.code, key, tag)
	}
	return msg, nil
}

// Text returns the label for key, or key itself when it is missing.
func (t *StrictTranslator) Text(key string) string {
	msg, err := t.Lookup(key)
	if err != nil {
		return key
	}
	return msg
}
