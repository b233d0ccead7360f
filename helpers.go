package mysite

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/kevinypfan/my-site/siteconfig"
)

// Slugify converts a title to a URL-safe slug. Letters of any script are
// kept so that Chinese titles still produce a slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterRelatedPosts finds posts that share at least one tag with current.
func FilterRelatedPosts(current BlogPost, posts []BlogPost) []BlogPost {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []BlogPost
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[normalizeTag(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// safeReturn keeps a post-redirect target on this site. Browsers drop tabs
// and newlines from URLs, so "/\t/host" would become "//host"; any control
// character rejects the target.
func safeReturn(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	if strings.ContainsFunc(target, unicode.IsControl) {
		return "/"
	}
	return target
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site siteconfig.Site, p Page) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        p.Title,
		"url":         BuildURL(site.SiteURL),
		"description": p.Description,
		"inLanguage":  string(p.Locale),
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post BlogPost, site siteconfig.Site) string {
	postURL := BuildURL(site.SiteURL, "blog", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Summary,
		"datePublished": post.Date,
		"url":           postURL,
		"inLanguage":    string(post.Locale),
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	if site.Title != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Title,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
