// Package views is the default set of page components. Pages are
// html/template files embedded in the binary and exposed as templ
// components, so custom views written with templ can replace any of them.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	mysite "github.com/kevinypfan/my-site"
	"github.com/kevinypfan/my-site/locale"
)

//go:embed templates/*.html
var files embed.FS

var (
	publicPages = []string{"home", "projects", "post", "notfound", "servererror"}
	adminPages  = []string{"admin_login", "admin_dashboard", "admin_form", "admin_images"}
)

// pages maps a page name to its template set: the shared layout plus the
// page's own file.
var pages = mustParse()

func mustParse() map[string]*template.Template {
	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html"))
	admin := template.Must(template.New("admin.html").Funcs(funcs).ParseFS(files, "templates/admin.html"))

	out := make(map[string]*template.Template)
	for _, name := range publicPages {
		out[name] = template.Must(template.Must(layout.Clone()).ParseFS(files, "templates/"+name+".html"))
	}
	for _, name := range adminPages {
		out[name] = template.Must(template.Must(admin.Clone()).ParseFS(files, "templates/"+name+".html"))
	}
	return out
}

// pageData is what the public templates see.
type pageData struct {
	mysite.Page
	Posts        []mysite.BlogPost
	ActiveTag    string
	Tags         []string
	Post         mysite.BlogPost
	Related      []mysite.BlogPost
	Translations []locale.Code
	Projects     []locale.Project
	JSONLD       template.JS
}

type adminData struct {
	CSRFToken string
	ShowError bool
	Message   string
	Posts     []mysite.BlogPost
	Post      mysite.BlogPost
	Locales   []locale.Code
	Images    []mysite.Image
}

// execute renders the named template of page.
func execute(page, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[page]
		if !ok {
			return fmt.Errorf("views: unknown page %q", page)
		}
		return t.ExecuteTemplate(w, name, data)
	})
}

// Default returns the built-in views.
func Default() mysite.ViewFuncs {
	return mysite.ViewFuncs{
		Home:           Home,
		BlogSection:    BlogSection,
		Projects:       Projects,
		Post:           Post,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminForm:      AdminForm,
		AdminImages:    AdminImages,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

// Home renders the landing page: localized intro plus the post list.
func Home(p mysite.Page, posts []mysite.BlogPost, activeTag string, tags []string) templ.Component {
	return execute("home", "layout", pageData{
		Page:      p,
		Posts:     posts,
		ActiveTag: activeTag,
		Tags:      tags,
		JSONLD:    template.JS(mysite.WebsiteJsonLD(p.Site, p)),
	})
}

// BlogSection renders only the post list, for tag filtering without a
// full page load.
func BlogSection(p mysite.Page, posts []mysite.BlogPost, activeTag string, tags []string) templ.Component {
	return execute("home", "blog", pageData{Page: p, Posts: posts, ActiveTag: activeTag, Tags: tags})
}

// Projects renders the project cards, or an empty-state when the locale
// has none.
func Projects(p mysite.Page, projects []locale.Project) templ.Component {
	return execute("projects", "layout", pageData{Page: p, Projects: projects})
}

// Post renders a single post with its related posts and the locales it is
// translated into.
func Post(p mysite.Page, post mysite.BlogPost, related []mysite.BlogPost, translations []locale.Code) templ.Component {
	return execute("post", "layout", pageData{
		Page:         p,
		Post:         post,
		Related:      related,
		Translations: translations,
		JSONLD:       template.JS(mysite.BlogPostingJsonLD(post, p.Site)),
	})
}

// NotFound renders the 404 page in the visitor's locale.
func NotFound(p mysite.Page) templ.Component {
	return execute("notfound", "layout", pageData{Page: p})
}

// ServerError renders the 500 page without exposing the error.
func ServerError(p mysite.Page) templ.Component {
	return execute("servererror", "layout", pageData{Page: p})
}

// AdminLogin renders the password form, with an error line after a failed attempt.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return execute("admin_login", "admin", adminData{ShowError: showError, CSRFToken: csrfToken})
}

// AdminDashboard lists every post version, drafts included.
func AdminDashboard(posts []mysite.BlogPost, message string, csrfToken string) templ.Component {
	return execute("admin_dashboard", "admin", adminData{Posts: posts, Message: message, CSRFToken: csrfToken})
}

// AdminForm renders the editor for one locale version of a post.
func AdminForm(post mysite.BlogPost, locales []locale.Code, csrfToken string) templ.Component {
	return execute("admin_form", "admin", adminData{Post: post, Locales: locales, CSRFToken: csrfToken})
}

// AdminImages lists uploaded images with their delete buttons.
func AdminImages(images []mysite.Image, csrfToken string) templ.Component {
	return execute("admin_images", "admin", adminData{Images: images, CSRFToken: csrfToken})
}
