package mysite

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/kevinypfan/my-site/locale"
)

// page assembles the data every public view needs. It fails only when the
// content tables cannot resolve the visitor's locale.
func (a *App) page(c echo.Context, meta PageMeta) (Page, error) {
	code := Locale(c)
	title, err := a.Content.Title(code)
	if err != nil {
		return Page{}, err
	}
	desc, err := a.Content.Description(code)
	if err != nil {
		return Page{}, err
	}
	t := a.Bundle.For(code)
	if meta.Title == "" {
		meta.Title = title
	}
	if meta.Description == "" {
		meta.Description = desc
	}
	if meta.URL == "" {
		meta.URL = BuildURL(a.Config.Site.SiteURL) + strings.TrimPrefix(c.Request().URL.Path, "/")
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	return Page{
		Meta:        meta,
		Locale:      code,
		T:           t,
		Site:        a.Config.Site,
		Title:       title,
		Description: desc,
		LangMenu:    a.langMenu(c, t),
		CSRFToken:   CsrfToken(c),
	}, nil
}

func (a *App) handleHome(c echo.Context) error {
	code := Locale(c)
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(code, tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(code)
	if err != nil {
		return err
	}
	p, err := a.page(c, PageMeta{})
	if err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "blog" {
		return Render(c, a.Views.BlogSection(p, posts, tag, tags))
	}
	return Render(c, a.Views.Home(p, posts, tag, tags))
}

func (a *App) handleProjects(c echo.Context) error {
	projects, err := a.Content.ProjectsFor(Locale(c))
	if err != nil {
		return err
	}
	p, err := a.page(c, PageMeta{})
	if err != nil {
		return err
	}
	p.Meta.Title = p.T.Text("projects") + " - " + p.Title
	return Render(c, a.Views.Projects(p, projects))
}

func (a *App) handlePost(c echo.Context) error {
	code := Locale(c)
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(slug, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	posts, err := a.Cache.ListPosts(code, "")
	if err != nil {
		return err
	}
	translations, err := a.Cache.Translations(slug)
	if err != nil {
		return err
	}
	p, err := a.page(c, PageMeta{
		Title:       post.Title,
		Description: post.Summary,
		URL:         BuildURL(a.Config.Site.SiteURL, "blog", post.Slug),
		OGType:      "article",
	})
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(p, post, FilterRelatedPosts(post, posts), translations))
}

// searchDocument is one entry of the kbar command palette feed.
type searchDocument struct {
	Title   string   `json:"title"`
	Date    string   `json:"date"`
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
	Slug    string   `json:"slug"`
	Path    string   `json:"path"`
	Locale  string   `json:"locale"`
}

func (a *App) handleSearchDocuments(c echo.Context) error {
	posts, err := a.Cache.ListPosts(Locale(c), "")
	if err != nil {
		return err
	}
	docs := make([]searchDocument, 0, len(posts))
	for _, p := range posts {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		docs = append(docs, searchDocument{
			Title:   p.Title,
			Date:    p.Date,
			Tags:    tags,
			Summary: p.Summary,
			Slug:    p.Slug,
			Path:    "blog/" + p.Slug,
			Locale:  string(p.Locale),
		})
	}
	return c.JSON(http.StatusOK, docs)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.ListPosts("", "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

// handleFeed serves the posts written in the visitor's locale, newest first.
// Unlike the home page it never falls back to the default locale, so every
// item matches the channel language. ?tag= narrows it to one tag.
func (a *App) handleFeed(c echo.Context) error {
	code := Locale(c)
	posts, err := a.Store.ListPosts(code, c.QueryParam("tag"))
	if err != nil {
		return err
	}
	return a.renderRSS(c, code, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\nHost: %s\n",
		a.Config.Site.CanonicalURL(), a.Config.Site.CanonicalURL())
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		a.renderErrorPage(c, http.StatusNotFound, a.Views.NotFound)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code < 500 {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	if errors.Is(err, locale.ErrMissingLocaleData) {
		a.Logger.Error("content has no entry for the requested or default locale",
			"path", c.Request().URL.Path, "locale", Locale(c), "error", err)
	} else {
		a.Logger.Error("server error", "path", c.Request().URL.Path, "error", err)
	}
	a.renderErrorPage(c, code, a.Views.ServerError)
}

// renderErrorPage renders view, falling back to plain text when the page
// itself cannot be assembled.
func (a *App) renderErrorPage(c echo.Context, code int, view func(Page) templ.Component) {
	p, err := a.page(c, PageMeta{})
	if err == nil {
		err = RenderStatus(c, code, view(p))
	}
	if err != nil {
		a.Logger.Error("render error page", "status", code, "error", err)
		_ = c.String(code, http.StatusText(code))
	}
}
