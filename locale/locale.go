// Package locale holds the per-locale content tables of the site and resolves
// them against a requested locale, falling back to a default locale.
package locale

import (
	"errors"
	"fmt"
	"sort"
)

// Code identifies a language/region variant of content, e.g. "en" or "zh-Hant-TW".
type Code string

// DefaultCode is the fallback locale used when a Resolver is built without one.
const DefaultCode Code = "en"

// Strings maps a locale to a display string.
type Strings map[Code]string

// Project is one entry of the projects page.
type Project struct {
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description"`
	ImgSrc      string `toml:"imgSrc" json:"imgSrc"`
	Href        string `toml:"href" json:"href"`
}

// ProjectList maps a locale to its projects in display order.
type ProjectList map[Code][]Project

// ErrMissingLocaleData is matched by every MissingLocaleDataError.
var ErrMissingLocaleData = errors.New("missing locale data")

// MissingLocaleDataError reports a table that has neither the requested
// locale nor the default one.
type MissingLocaleDataError struct {
	Requested Code
	Default   Code
}

func (e *MissingLocaleDataError) Error() string {
	if e.Requested == e.Default {
		return fmt.Sprintf("missing locale data: no entry for default locale %q", e.Default)
	}
	return fmt.Sprintf("missing locale data: no entry for %q or default locale %q", e.Requested, e.Default)
}

func (e *MissingLocaleDataError) Unwrap() error {
	return ErrMissingLocaleData
}

// Locales returns the locale codes present in table, sorted.
func Locales[M ~map[Code]V, V any](table M) []Code {
	codes := make([]Code, 0, len(table))
	for c := range table {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
