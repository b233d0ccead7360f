package siteconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinypfan/my-site/siteconfig"
)

func TestDefaultIsValid(t *testing.T) {
	s := siteconfig.Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, siteconfig.AnalyticsGoogle, s.Analytics.Provider)
	assert.Equal(t, siteconfig.CommentsGiscus, s.Comments.Provider)
	assert.Equal(t, siteconfig.SearchKbar, s.Search.Provider)
	assert.Equal(t, siteconfig.NewsletterEmailOctopus, s.Newsletter.Provider)
	assert.Equal(t, "/search.json", s.SearchDocumentsPath())
}

func TestDefaultWarnsAboutGiscusEnv(t *testing.T) {
	w := siteconfig.Default().Warnings()
	assert.Contains(t, w, "comments.giscusConfig.repo is empty")
	assert.Contains(t, w, "comments.giscusConfig.categoryId is empty")
	assert.NotContains(t, w, "analytics.googleAnalyticsId is empty")
}

func TestLoadFile(t *testing.T) {
	s, err := siteconfig.Load("testdata/site.toml")
	require.NoError(t, err)

	assert.Equal(t, "Test Blog", s.Title)
	assert.Equal(t, "Kevin Fan", s.Author, "unset keys keep their defaults")
	assert.Equal(t, siteconfig.ThemeDark, s.Theme)
	assert.Equal(t, "https://example.test", s.CanonicalURL())
	assert.Equal(t, siteconfig.AnalyticsPlausible, s.Analytics.Provider)
	assert.Equal(t, "someone/comments", s.Comments.Utterances.Repo)
	assert.Equal(t, siteconfig.SearchAlgolia, s.Search.Provider)
	assert.Equal(t, "docsearch", s.Search.Algolia.IndexName)
	assert.Empty(t, s.SearchDocumentsPath(), "no feed path when algolia is selected")
	assert.Empty(t, s.Warnings())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SITE_TITLE", "From Env")
	t.Setenv("BASE_PATH", "/blog")
	t.Setenv("GISCUS_REPO", "kevinypfan/my-site")
	t.Setenv("GISCUS_REPOSITORY_ID", "R_1")
	t.Setenv("GISCUS_CATEGORY", "Announcements")
	t.Setenv("GISCUS_CATEGORY_ID", "DIC_1")

	s, err := siteconfig.Load("")
	require.NoError(t, err)

	assert.Equal(t, "From Env", s.Title)
	assert.Equal(t, "/blog/static/images/logo.png", s.LogoURL())
	assert.Equal(t, "/blog/static/images/social-banner.png", s.SocialBannerURL())
	assert.Equal(t, "kevinypfan/my-site", s.Comments.Giscus.Repo)
	assert.Empty(t, s.Warnings())
}

func TestAssetURLsWithoutAssets(t *testing.T) {
	s := siteconfig.Default()
	s.BasePath = "/blog"
	s.SiteLogo = ""
	s.SocialBanner = ""
	assert.Empty(t, s.LogoURL())
	assert.Empty(t, s.SocialBannerURL())
}

func TestLoadRejectsUnknownProviders(t *testing.T) {
	_, err := siteconfig.Load("testdata/bad.toml")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `theme: unsupported value "sepia"`)
	assert.Contains(t, msg, `analytics.provider: unsupported value "matomo"`)
	assert.Contains(t, msg, `search.provider: unsupported value "lunr"`)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := siteconfig.Load("testdata/nope.toml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*siteconfig.Site)
		ok     bool
	}{
		{"default", func(*siteconfig.Site) {}, true},
		{"relative url", func(s *siteconfig.Site) { s.SiteURL = "/blog" }, false},
		{"ftp url", func(s *siteconfig.Site) { s.SiteURL = "ftp://example.test" }, false},
		{"empty title", func(s *siteconfig.Site) { s.Title = " " }, false},
		{"bad default locale", func(s *siteconfig.Site) { s.DefaultLocale = "not a locale" }, false},
		{"analytics none", func(s *siteconfig.Site) { s.Analytics.Provider = siteconfig.AnalyticsNone }, true},
		{"no newsletter", func(s *siteconfig.Site) { s.Newsletter.Provider = "" }, true},
		{"unknown newsletter", func(s *siteconfig.Site) { s.Newsletter.Provider = "substack" }, false},
		{"unknown comments", func(s *siteconfig.Site) { s.Comments.Provider = "waline" }, false},
		{"comments disabled", func(s *siteconfig.Site) {
			s.IsComments = false
			s.Comments.Provider = "waline"
		}, true},
		{"bad giscus mapping", func(s *siteconfig.Site) { s.Comments.Giscus.Mapping = "og:title" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := siteconfig.Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
