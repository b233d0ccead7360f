package mysite

import (
	"github.com/a-h/templ"

	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/locale"
	"github.com/kevinypfan/my-site/siteconfig"
)

// BlogPost is one locale's version of a post. Slug and Locale together
// identify it in the store.
type BlogPost struct {
	Title     string
	Date      string
	Tags      []string
	Summary   string
	Link      string
	Slug      string
	Locale    locale.Code
	Content   string
	Published bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Image is the metadata of an uploaded, re-encoded image.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// Page is what every public view receives besides its own data: the
// visitor's locale, a translator bound to it and the resolved site copy.
type Page struct {
	Meta        PageMeta
	Locale      locale.Code
	T           i18n.Translator
	Site        siteconfig.Site
	Title       string
	Description string
	LangMenu    templ.Component
	CSRFToken   string
}
