package mysite

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"

	"github.com/kevinypfan/my-site/siteconfig"
)

// Config holds the server settings. Site is the public site configuration;
// everything else comes from the environment.
type Config struct {
	Site siteconfig.Site

	Addr         string `env:"ADDR" envDefault:":3000"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/blog.db"`

	AdminPassword string `env:"ADMIN_PASSWORD"`
	SessionSecret string `env:"ADMIN_SESSION_SECRET"`
	CookieSecure  bool   `env:"COOKIE_SECURE"`

	PostCacheTTL time.Duration `env:"POST_CACHE_TTL" envDefault:"5m"`
	StaticDir    string        `env:"STATIC_DIR" envDefault:"public"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the site configuration from siteFile (see siteconfig.Load)
// and the server settings from the environment.
func LoadConfig(siteFile string) (Config, error) {
	site, err := siteconfig.Load(siteFile)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Site: site}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("mysite: environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Site.Title == "" {
		c.Site = siteconfig.Default()
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithFs sets the filesystem uploads are written to (default: the OS).
func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		a.fs = fs
	}
}

// WithLogger replaces the logger built from Config.LogLevel.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
