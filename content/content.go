// Package content holds the localized copy of the site: the main title and
// description and the projects page. The tables ship inside the binary and
// are decoded once at startup.
package content

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/kevinypfan/my-site/locale"
)

//go:embed data/content.toml
var embedded []byte

// Content is the decoded set of localized tables. Treat it as read-only.
type Content struct {
	MainTitle       locale.Strings     `toml:"maintitle"`
	MainDescription locale.Strings     `toml:"maindescription"`
	Projects        locale.ProjectList `toml:"projects"`

	resolver locale.Resolver
}

// Load decodes the built-in tables. def is the fallback locale.
func Load(def locale.Code) (*Content, error) {
	return Parse(embedded, def)
}

// Parse decodes tables from TOML data.
func Parse(data []byte, def locale.Code) (*Content, error) {
	var c Content
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, fmt.Errorf("content: decode: %w", err)
	}
	c.resolver = locale.NewResolver(def)
	return &c, nil
}

// Validate reports every table that lacks the default locale.
func (c *Content) Validate() error {
	var errs []error
	if err := locale.Validate(c.resolver, c.MainTitle); err != nil {
		errs = append(errs, fmt.Errorf("maintitle: %w", err))
	}
	if err := locale.Validate(c.resolver, c.MainDescription); err != nil {
		errs = append(errs, fmt.Errorf("maindescription: %w", err))
	}
	if err := locale.Validate(c.resolver, c.Projects); err != nil {
		errs = append(errs, fmt.Errorf("projects: %w", err))
	}
	return errors.Join(errs...)
}

// Title returns the main title for code.
func (c *Content) Title(code locale.Code) (string, error) {
	s, err := c.resolver.String(c.MainTitle, code)
	if err != nil {
		return "", fmt.Errorf("maintitle: %w", err)
	}
	return s, nil
}

// Description returns the main description for code.
func (c *Content) Description(code locale.Code) (string, error) {
	s, err := c.resolver.String(c.MainDescription, code)
	if err != nil {
		return "", fmt.Errorf("maindescription: %w", err)
	}
	return s, nil
}

// ProjectsFor returns the projects for code in display order.
func (c *Content) ProjectsFor(code locale.Code) ([]locale.Project, error) {
	p, err := c.resolver.Projects(c.Projects, code)
	if err != nil {
		return nil, fmt.Errorf("projects: %w", err)
	}
	return p, nil
}

// Locales returns every locale that appears in at least one table, sorted.
func (c *Content) Locales() []locale.Code {
	seen := make(locale.Strings)
	for _, code := range locale.Locales(c.MainTitle) {
		seen[code] = ""
	}
	for _, code := range locale.Locales(c.MainDescription) {
		seen[code] = ""
	}
	for _, code := range locale.Locales(c.Projects) {
		seen[code] = ""
	}
	return locale.Locales(seen)
}
