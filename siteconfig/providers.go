package siteconfig

import "fmt"

// Theme is the default color scheme.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
)

// AnalyticsProvider selects the analytics script the templates include.
type AnalyticsProvider string

const (
	AnalyticsNone      AnalyticsProvider = "none"
	AnalyticsUmami     AnalyticsProvider = "umami"
	AnalyticsPlausible AnalyticsProvider = "plausible"
	AnalyticsSimple    AnalyticsProvider = "simple"
	AnalyticsPosthog   AnalyticsProvider = "posthog"
	AnalyticsGoogle    AnalyticsProvider = "google"
)

// CommentsProvider selects the comment widget.
type CommentsProvider string

const (
	CommentsGiscus     CommentsProvider = "giscus"
	CommentsUtterances CommentsProvider = "utterances"
	CommentsDisqus     CommentsProvider = "disqus"
)

// SearchProvider selects the search palette backend.
type SearchProvider string

const (
	SearchKbar    SearchProvider = "kbar"
	SearchAlgolia SearchProvider = "algolia"
)

// NewsletterProvider selects the newsletter signup backend.
type NewsletterProvider string

const (
	NewsletterMailchimp    NewsletterProvider = "mailchimp"
	NewsletterButtondown   NewsletterProvider = "buttondown"
	NewsletterConvertkit   NewsletterProvider = "convertkit"
	NewsletterKlaviyo      NewsletterProvider = "klaviyo"
	NewsletterRevue        NewsletterProvider = "revue"
	NewsletterEmailOctopus NewsletterProvider = "emailoctopus"
)

var (
	themes = []Theme{ThemeSystem, ThemeDark, ThemeLight}

	analyticsProviders = []AnalyticsProvider{
		AnalyticsNone, AnalyticsUmami, AnalyticsPlausible,
		AnalyticsSimple, AnalyticsPosthog, AnalyticsGoogle,
	}
	commentsProviders   = []CommentsProvider{CommentsGiscus, CommentsUtterances, CommentsDisqus}
	searchProviders     = []SearchProvider{SearchKbar, SearchAlgolia}
	newsletterProviders = []NewsletterProvider{
		NewsletterMailchimp, NewsletterButtondown, NewsletterConvertkit,
		NewsletterKlaviyo, NewsletterRevue, NewsletterEmailOctopus,
	}
	giscusMappings = []string{"pathname", "url", "title"}
)

func oneOf[T ~string](field string, v T, allowed []T) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (want one of %v)", field, v, allowed)
}
