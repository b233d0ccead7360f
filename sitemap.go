package mysite

import (
	"encoding/xml"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/kevinypfan/my-site/locale"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	Alternates []sitemapLink `xml:"xhtml:link"`
}

type sitemapLink struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// localizedURL returns loc pinned to code with the lang query parameter.
func localizedURL(loc string, code locale.Code) string {
	return loc + "?" + url.Values{localeQuery: {string(code)}}.Encode()
}

// alternates lists one link per locale plus x-default pointing at loc.
func alternates(loc string, codes []locale.Code) []sitemapLink {
	if len(codes) < 2 {
		return nil
	}
	links := make([]sitemapLink, 0, len(codes)+1)
	for _, code := range codes {
		links = append(links, sitemapLink{Rel: "alternate", HrefLang: string(code), Href: localizedURL(loc, code)})
	}
	return append(links, sitemapLink{Rel: "alternate", HrefLang: "x-default", Href: loc})
}

// renderSitemap lists the home and projects pages and one entry per post
// slug. Pages available in more than one locale carry hreflang alternates.
func (a *App) renderSitemap(c echo.Context, posts []BlogPost) error {
	base := a.Config.Site.SiteURL
	urls := []sitemapURL{
		{Loc: BuildURL(base), Alternates: alternates(BuildURL(base), a.locales)},
		{Loc: BuildURL(base, "projects"), Alternates: alternates(BuildURL(base, "projects"), a.locales)},
	}

	type entry struct {
		lastMod string
		codes   []locale.Code
	}
	var order []string
	bySlug := make(map[string]*entry)
	for _, p := range posts {
		e, ok := bySlug[p.Slug]
		if !ok {
			e = &entry{}
			bySlug[p.Slug] = e
			order = append(order, p.Slug)
		}
		if p.Date > e.lastMod {
			e.lastMod = p.Date
		}
		e.codes = append(e.codes, p.Locale)
	}
	for _, slug := range order {
		e := bySlug[slug]
		loc := BuildURL(base, "blog", slug)
		urls = append(urls, sitemapURL{Loc: loc, LastMod: e.lastMod, Alternates: alternates(loc, e.codes)})
	}

	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
