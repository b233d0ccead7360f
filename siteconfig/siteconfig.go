// Package siteconfig holds the deployment-wide site settings: branding, social
// links and the selection of external analytics, comments, search and
// newsletter providers. A Site is built once at startup and never mutated.
package siteconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/kevinypfan/my-site/locale"
)

// Site is the static site configuration.
type Site struct {
	Title         string      `toml:"title" env:"SITE_TITLE"`
	Author        string      `toml:"author" env:"SITE_AUTHOR"`
	HeaderTitle   string      `toml:"headerTitle" env:"SITE_HEADER_TITLE"`
	Description   string      `toml:"description" env:"SITE_DESCRIPTION"`
	Language      string      `toml:"language" env:"SITE_LANGUAGE"`
	Locale        string      `toml:"locale" env:"SITE_LOCALE"`
	DefaultLocale locale.Code `toml:"defaultLocale" env:"SITE_DEFAULT_LOCALE"`
	Theme         Theme       `toml:"theme" env:"SITE_THEME"`
	SiteURL       string      `toml:"siteUrl" env:"SITE_URL"`
	SiteRepo      string      `toml:"siteRepo" env:"SITE_REPO"`
	BasePath      string      `toml:"basePath" env:"BASE_PATH"`
	SiteLogo      string      `toml:"siteLogo"`
	SocialBanner  string      `toml:"socialBanner"`

	Email    string `toml:"email" env:"SITE_EMAIL"`
	GitHub   string `toml:"github"`
	LinkedIn string `toml:"linkedin"`
	X        string `toml:"x"`
	Mastodon string `toml:"mastodon"`

	MultiAuthors bool   `toml:"multiauthors"`
	Formspree    bool   `toml:"formspree"`
	IsWaline     bool   `toml:"iswaline"`
	WalineServer string `toml:"walineServer"`
	IsComments   bool   `toml:"iscomments" env:"SITE_COMMENTS"`

	Analytics  Analytics  `toml:"analytics"`
	Newsletter Newsletter `toml:"newsletter"`
	Comments   Comments   `toml:"comments"`
	Search     Search     `toml:"search"`
}

// Analytics selects and parameterizes the analytics provider.
type Analytics struct {
	Provider             AnalyticsProvider `toml:"provider" env:"ANALYTICS_PROVIDER"`
	UmamiWebsiteID       string            `toml:"umamiWebsiteId" env:"UMAMI_ID"`
	PlausibleDataDomain  string            `toml:"plausibleDataDomain"`
	PosthogProjectAPIKey string            `toml:"posthogProjectApiKey" env:"POSTHOG_API_KEY"`
	GoogleAnalyticsID    string            `toml:"googleAnalyticsId" env:"GOOGLE_ANALYTICS_ID"`
}

// Newsletter selects the newsletter provider. An empty provider disables signup.
type Newsletter struct {
	Provider NewsletterProvider `toml:"provider" env:"NEWSLETTER_PROVIDER"`
}

// Comments selects and parameterizes the comment widget.
type Comments struct {
	Provider   CommentsProvider `toml:"provider" env:"COMMENTS_PROVIDER"`
	Giscus     Giscus           `toml:"giscusConfig"`
	Utterances Utterances       `toml:"utterancesConfig"`
	Disqus     Disqus           `toml:"disqusConfig"`
}

// Giscus mirrors the data-* attributes of the giscus widget.
type Giscus struct {
	Repo         string `toml:"repo" env:"GISCUS_REPO"`
	RepositoryID string `toml:"repositoryId" env:"GISCUS_REPOSITORY_ID"`
	Category     string `toml:"category" env:"GISCUS_CATEGORY"`
	CategoryID   string `toml:"categoryId" env:"GISCUS_CATEGORY_ID"`
	Mapping      string `toml:"mapping"`
	Reactions    string `toml:"reactions"`
	Metadata     string `toml:"metadata"`
	Theme        string `toml:"theme"`
	DarkTheme    string `toml:"darkTheme"`
	ThemeURL     string `toml:"themeURL"`
	Lang         string `toml:"lang"`
}

// Utterances configures the utterances widget.
type Utterances struct {
	Repo      string `toml:"repo" env:"UTTERANCES_REPO"`
	IssueTerm string `toml:"issueTerm"`
	Label     string `toml:"label"`
	Theme     string `toml:"theme"`
	DarkTheme string `toml:"darkTheme"`
}

// Disqus configures the disqus embed.
type Disqus struct {
	Shortname string `toml:"shortname" env:"DISQUS_SHORTNAME"`
}

// Search selects the search provider.
type Search struct {
	Provider SearchProvider `toml:"provider" env:"SEARCH_PROVIDER"`
	Kbar     Kbar           `toml:"kbarConfig"`
	Algolia  Algolia        `toml:"algoliaConfig"`
}

// Kbar points the command palette at its document feed.
type Kbar struct {
	SearchDocumentsPath string `toml:"searchDocumentsPath"`
}

// Algolia holds the public DocSearch credentials.
type Algolia struct {
	AppID     string `toml:"appId" env:"ALGOLIA_APP_ID"`
	APIKey    string `toml:"apiKey" env:"ALGOLIA_API_KEY"`
	IndexName string `toml:"indexName" env:"ALGOLIA_INDEX_NAME"`
}

// Default returns the settings the site ships with.
func Default() Site {
	return Site{
		Title:         "KevinFan's Blog",
		Author:        "Kevin Fan",
		HeaderTitle:   "~/kevinfan",
		Description:   "記載著 Kevin Fan 的學習心得與技術筆記",
		Language:      "zh-Hant-TW",
		Locale:        "zh-TW",
		DefaultLocale: locale.DefaultCode,
		Theme:         ThemeSystem,
		SiteURL:       "https://blog.kevinfan.me",
		SiteRepo:      "https://github.com/kevinypfan/my-site",
		SiteLogo:      "/static/images/logo.png",
		SocialBanner:  "/static/images/social-banner.png",
		Email:         "kevinypfan@gmail.com",
		GitHub:        "https://github.com/kevinypfan",
		LinkedIn:      "https://www.linkedin.com/in/%E6%8C%AF%E5%93%B2-%E8%8C%83-b45a0a151/",
		IsComments:    true,
		Analytics: Analytics{
			Provider:          AnalyticsGoogle,
			GoogleAnalyticsID: "G-BVT364HDGS",
		},
		Newsletter: Newsletter{Provider: NewsletterEmailOctopus},
		Comments: Comments{
			Provider: CommentsGiscus,
			Giscus: Giscus{
				Mapping:   "pathname",
				Reactions: "1",
				Metadata:  "0",
				Theme:     "light",
				DarkTheme: "transparent_dark",
				Lang:      "en",
			},
		},
		Search: Search{
			Provider: SearchKbar,
			Kbar:     Kbar{SearchDocumentsPath: "search.json"},
		},
	}
}

// Load starts from Default, decodes the TOML file at path over it (skipped
// when path is empty), then applies a .env file if present and environment
// overrides. The result is validated.
func Load(path string) (Site, error) {
	s := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &s); err != nil {
			return Site{}, fmt.Errorf("siteconfig: decode %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Site{}, fmt.Errorf("siteconfig: load .env: %w", err)
	}
	if err := env.Parse(&s); err != nil {
		return Site{}, fmt.Errorf("siteconfig: environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Site{}, err
	}
	return s, nil
}

// Validate checks every enumerated option and the fields the site cannot
// render without.
func (s Site) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if u, err := url.Parse(s.SiteURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("siteUrl: %q is not an absolute http(s) URL", s.SiteURL))
	}
	if _, err := language.Parse(string(s.DefaultLocale)); err != nil {
		errs = append(errs, fmt.Errorf("defaultLocale: %q: %w", s.DefaultLocale, err))
	}
	if err := oneOf("theme", s.Theme, themes); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("analytics.provider", s.Analytics.Provider, analyticsProviders); err != nil {
		errs = append(errs, err)
	}
	if s.Newsletter.Provider != "" {
		if err := oneOf("newsletter.provider", s.Newsletter.Provider, newsletterProviders); err != nil {
			errs = append(errs, err)
		}
	}
	if s.IsComments {
		if err := oneOf("comments.provider", s.Comments.Provider, commentsProviders); err != nil {
			errs = append(errs, err)
		}
		if s.Comments.Provider == CommentsGiscus {
			if err := oneOf("comments.giscusConfig.mapping", s.Comments.Giscus.Mapping, giscusMappings); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := oneOf("search.provider", s.Search.Provider, searchProviders); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("siteconfig: %w", errors.Join(errs...))
	}
	return nil
}

// Warnings lists provider parameters that are missing for the selected
// providers. The site still renders; the provider widget is left out.
func (s Site) Warnings() []string {
	var w []string
	missing := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			w = append(w, field+" is empty")
		}
	}
	switch s.Analytics.Provider {
	case AnalyticsUmami:
		missing("analytics.umamiWebsiteId", s.Analytics.UmamiWebsiteID)
	case AnalyticsPlausible:
		missing("analytics.plausibleDataDomain", s.Analytics.PlausibleDataDomain)
	case AnalyticsPosthog:
		missing("analytics.posthogProjectApiKey", s.Analytics.PosthogProjectAPIKey)
	case AnalyticsGoogle:
		missing("analytics.googleAnalyticsId", s.Analytics.GoogleAnalyticsID)
	}
	if s.IsComments {
		switch s.Comments.Provider {
		case CommentsGiscus:
			g := s.Comments.Giscus
			missing("comments.giscusConfig.repo", g.Repo)
			missing("comments.giscusConfig.repositoryId", g.RepositoryID)
			missing("comments.giscusConfig.category", g.Category)
			missing("comments.giscusConfig.categoryId", g.CategoryID)
		case CommentsUtterances:
			missing("comments.utterancesConfig.repo", s.Comments.Utterances.Repo)
		case CommentsDisqus:
			missing("comments.disqusConfig.shortname", s.Comments.Disqus.Shortname)
		}
	}
	switch s.Search.Provider {
	case SearchKbar:
		missing("search.kbarConfig.searchDocumentsPath", s.Search.Kbar.SearchDocumentsPath)
	case SearchAlgolia:
		missing("search.algoliaConfig.appId", s.Search.Algolia.AppID)
		missing("search.algoliaConfig.apiKey", s.Search.Algolia.APIKey)
		missing("search.algoliaConfig.indexName", s.Search.Algolia.IndexName)
	}
	return w
}

// LogoURL returns the logo path prefixed with BasePath, or "" without a logo.
func (s Site) LogoURL() string {
	if s.SiteLogo == "" {
		return ""
	}
	return s.BasePath + s.SiteLogo
}

// SocialBannerURL returns the social banner path prefixed with BasePath, or
// "" without a banner.
func (s Site) SocialBannerURL() string {
	if s.SocialBanner == "" {
		return ""
	}
	return s.BasePath + s.SocialBanner
}

// CanonicalURL returns SiteURL without a trailing slash.
func (s Site) CanonicalURL() string {
	return strings.TrimSuffix(s.SiteURL, "/")
}

// SearchDocumentsPath returns the URL path of the kbar document feed, or ""
// when kbar is not the selected provider.
func (s Site) SearchDocumentsPath() string {
	if s.Search.Provider != SearchKbar || s.Search.Kbar.SearchDocumentsPath == "" {
		return ""
	}
	return "/" + strings.TrimPrefix(s.Search.Kbar.SearchDocumentsPath, "/")
}
