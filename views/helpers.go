package views

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/langswitch"
	"github.com/kevinypfan/my-site/locale"
	"github.com/kevinypfan/my-site/markdown"
)

var funcs = template.FuncMap{
	"component":  renderComponent,
	"markdown":   renderMarkdown,
	"tagClass":   TagClass,
	"pathEscape": url.PathEscape,
	"joinTags":   JoinTags,
	"flag":       langswitch.FlagPath,
	"label":      Label,
	"external":   IsExternal,
}

// renderComponent inlines a templ component into a template.
func renderComponent(c templ.Component) (template.HTML, error) {
	if c == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// renderMarkdown converts Markdown to HTML. Raw HTML in the source is
// dropped by the renderer, so the result is safe to inline.
func renderMarkdown(s string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.RenderMarkdown(&buf, s); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Label returns the display name of a locale in the translator's language.
func Label(t i18n.Translator, code locale.Code) string {
	if t == nil {
		return string(code)
	}
	return t.Text(string(code))
}

// IsExternal reports whether href leaves the site.
func IsExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	base := "inline-flex items-center rounded border border-ink dark:border-white/30 bg-stone-100 dark:bg-neutral-700 px-2.5 py-1 text-[11px] font-semibold uppercase tracking-[0.12em] hover:-translate-y-0.5 hover:shadow-sm transition"
	if active {
		base += " bg-ink dark:bg-white text-white dark:text-ink"
	}
	return base
}

// JoinTags formats a tag slice as a comma-separated string for form fields.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
