// Package mysite is the web server of a bilingual personal blog built with
// Go, Echo and templ. It serves posts from SQLite in the visitor's locale,
// the localized projects page, feeds, a sitemap with language alternates and
// a small admin dashboard.
//
// Pages are rendered by the components in ViewFuncs; the views package
// provides the default set.
package mysite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"

	"github.com/kevinypfan/my-site/content"
	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/locale"
)

// ViewFuncs holds the components the server renders pages with.
type ViewFuncs struct {
	Home           func(p Page, posts []BlogPost, activeTag string, tags []string) templ.Component
	BlogSection    func(p Page, posts []BlogPost, activeTag string, tags []string) templ.Component
	Projects       func(p Page, projects []locale.Project) templ.Component
	Post           func(p Page, post BlogPost, related []BlogPost, translations []locale.Code) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []BlogPost, message string, csrfToken string) templ.Component
	AdminForm      func(post BlogPost, locales []locale.Code, csrfToken string) templ.Component
	AdminImages    func(images []Image, csrfToken string) templ.Component
	NotFound       func(p Page) templ.Component
	ServerError    func(p Page) templ.Component
}

// App wires together the store, cache, translator, content tables, handlers
// and middleware.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   *Store
	Cache   *PostCache
	Views   ViewFuncs
	Bundle  *i18n.Bundle
	Content *content.Content
	Logger  *slog.Logger

	locales      []locale.Code
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	fs           afero.Fs
	ready        bool
}

// New creates an App. Nothing is opened until Init or Start.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		fs:     afero.NewOsFs(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = NewLogger(os.Stderr, cfg.LogLevel)
	}
	return a
}

// WithContent replaces the built-in content tables.
func WithContent(c *content.Content) Option {
	return func(a *App) {
		a.Content = c
	}
}

// WithBundle replaces the built-in translator messages.
func WithBundle(b *i18n.Bundle) Option {
	return func(a *App) {
		a.Bundle = b
	}
}

// Init loads the translator and content tables, opens the database and
// registers middleware and routes. Content tables without a default-locale
// entry stop startup. Start calls Init; tests may call it directly and
// drive a.Echo as an http.Handler.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	if a.Config.AdminPassword == "" {
		return errors.New("mysite: ADMIN_PASSWORD is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("mysite: ADMIN_SESSION_SECRET is required")
	}
	def := a.defaultLocale()

	if a.Bundle == nil {
		b, err := i18n.NewBundle(nil, def, a.Logger)
		if err != nil {
			return fmt.Errorf("mysite: %w", err)
		}
		a.Bundle = b
	}
	a.locales = a.Bundle.Locales()

	if a.Content == nil {
		c, err := content.Load(def)
		if err != nil {
			return fmt.Errorf("mysite: %w", err)
		}
		a.Content = c
	}
	if err := a.Content.Validate(); err != nil {
		return fmt.Errorf("mysite: content: %w", err)
	}
	for _, w := range a.Config.Site.Warnings() {
		a.Logger.Warn("site configuration", "problem", w)
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("mysite: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL, def)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start initializes the app and serves until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", "addr", a.Config.Addr, "locales", a.locales)
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger.Info("shutting down")
		return a.Echo.Shutdown(shutdownCtx)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	flags := http.FileServer(http.FS(FlagAssets))
	e.GET("/static/flags/*", echo.WrapHandler(flags))

	// User-owned assets live under StaticDir: /public/* maps to its root,
	// /static/* to its static/ directory.
	publicFS := http.FileServer(afero.NewHttpFs(afero.NewBasePathFs(a.fs, a.Config.StaticDir)))
	e.GET("/public/*", echo.WrapHandler(http.StripPrefix("/public", publicFS)))
	e.GET("/static/*", echo.WrapHandler(publicFS))
	e.GET("/favicon.svg", echo.WrapHandler(publicFS))
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	if p := a.Config.Site.SearchDocumentsPath(); p != "" {
		e.GET(p, a.handleSearchDocuments)
	}
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/projects/", a.handleProjects)
	e.GET("/blog/:slug/", a.handlePost)
	e.POST("/lang/:code/", a.handleLangSwitch)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/new/", a.handleAdminNew, requireAdmin)
	e.GET("/admin/post/:slug/", a.handleAdminPost, requireAdmin)
	e.POST("/admin/save/", a.handleAdminSave, requireAdmin)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete, requireAdmin)
	e.POST("/admin/post/:slug/delete/", a.handleAdminDelete, requireAdmin)
	e.GET("/admin/images/", a.handleImageList, requireAdmin)
	e.POST("/admin/images/upload/", a.handleImageUpload, requireAdmin)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete, requireAdmin)
	e.POST("/admin/images/:filename/delete/", a.handleImageDelete, requireAdmin)
}

// Locales returns the locales the site can be switched to, default first.
func (a *App) Locales() []locale.Code {
	return a.locales
}

// Close releases the database and stops background work.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
