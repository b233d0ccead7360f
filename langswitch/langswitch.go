// Package langswitch renders the locale switch buttons of the site header and
// reports a visitor's choice of locale to a caller-supplied callback.
package langswitch

import (
	"context"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/locale"
)

// FlagsRoot is where the per-locale flag images are served from.
const FlagsRoot = "/static/flags"

// FlagPath returns the flag image path for code. Nothing checks that the
// file exists; a missing flag renders as a broken image.
func FlagPath(code locale.Code) string {
	return FlagsRoot + "/" + url.PathEscape(string(code)) + ".svg"
}

// ActionPath returns the URL a control submits to.
func ActionPath(code locale.Code) string {
	return "/lang/" + url.PathEscape(string(code)) + "/"
}

// Control is one selectable locale. It holds no state between activations.
type Control struct {
	T        i18n.Translator
	OnSelect func(locale.Code)
	Locale   locale.Code
	LabelKey string

	// CSRFToken and Return are carried as hidden form fields.
	CSRFToken string
	Return    string
}

// New builds a control for code labelled with t.Text(labelKey).
func New(t i18n.Translator, onSelect func(locale.Code), code locale.Code, labelKey string) *Control {
	return &Control{T: t, OnSelect: onSelect, Locale: code, LabelKey: labelKey}
}

// Activate reports the control's locale to OnSelect, once per call.
func (c *Control) Activate() {
	if c.OnSelect != nil {
		c.OnSelect(c.Locale)
	}
}

// Label returns the display text of the control.
func (c *Control) Label() string {
	if c.T == nil {
		return c.LabelKey
	}
	return c.T.Text(c.LabelKey)
}

// Component renders the control as a single-button form.
func (c *Control) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		c.write(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func (c *Control) write(b *strings.Builder) {
	code := html.EscapeString(string(c.Locale))
	b.WriteString(`<form method="post" action="`)
	b.WriteString(html.EscapeString(ActionPath(c.Locale)))
	b.WriteString(`" class="lang-switch">`)
	if c.CSRFToken != "" {
		b.WriteString(`<input type="hidden" name="_csrf" value="`)
		b.WriteString(html.EscapeString(c.CSRFToken))
		b.WriteString(`"/>`)
	}
	if c.Return != "" {
		b.WriteString(`<input type="hidden" name="return" value="`)
		b.WriteString(html.EscapeString(c.Return))
		b.WriteString(`"/>`)
	}
	b.WriteString(`<button type="submit" class="group flex flex-row items-center py-2 hover:bg-primary-600 hover:text-white">`)
	b.WriteString(`<span class="ml-4 mr-2 w-10 rounded-md bg-white px-1 text-white group-hover:bg-primary-600 group-hover:text-primary-500 dark:bg-black">`)
	b.WriteString(`<img src="`)
	b.WriteString(html.EscapeString(FlagPath(c.Locale)))
	b.WriteString(`" alt="`)
	b.WriteString(code)
	b.WriteString(`" width="30" height="26" class="rounded"/></span>`)
	b.WriteString(`<div>`)
	b.WriteString(html.EscapeString(c.Label()))
	b.WriteString(`</div></button></form>`)
}

// Menu renders one control per locale as a list.
func Menu(controls ...*Control) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<ul class="lang-menu">`)
		for _, c := range controls {
			b.WriteString(`<li>`)
			c.write(&b)
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
