package mysite

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/kevinypfan/my-site/locale"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory cache of published posts with TTL. It keeps one
// view per requested locale: every slug resolved to the locale's version, or
// to the default locale's version when the post is not translated.
type PostCache struct {
	mu       sync.RWMutex
	slugs    map[string]map[locale.Code]BlogPost
	views    map[locale.Code]*localeView
	fetched  time.Time
	ttl      time.Duration
	store    *Store
	resolver locale.Resolver
}

type localeView struct {
	posts []BlogPost
	tags  []string
}

// NewPostCache creates a PostCache backed by the given Store. def is the
// locale untranslated posts are shown in.
func NewPostCache(s *Store, ttl time.Duration, def locale.Code) *PostCache {
	return &PostCache{store: s, ttl: ttl, resolver: locale.NewResolver(def)}
}

func (c *PostCache) valid() bool {
	return c.slugs != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.slugs = nil
	c.views = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts("", "")
	if err != nil {
		return err
	}
	slugs := make(map[string]map[locale.Code]BlogPost)
	for _, p := range posts {
		if slugs[p.Slug] == nil {
			slugs[p.Slug] = make(map[locale.Code]BlogPost)
		}
		slugs[p.Slug][p.Locale] = p
	}
	c.slugs = slugs
	c.views = make(map[locale.Code]*localeView)
	c.fetched = time.Now()
	return nil
}

func (c *PostCache) build(code locale.Code) *localeView {
	v := &localeView{}
	tags := make(map[string]struct{})
	for _, versions := range c.slugs {
		p, err := locale.Resolve(c.resolver, versions, code)
		if err != nil {
			continue
		}
		v.posts = append(v.posts, p)
		for _, t := range p.Tags {
			tags[normalizeTag(t)] = struct{}{}
		}
	}
	sort.Slice(v.posts, func(i, j int) bool {
		if v.posts[i].Date != v.posts[j].Date {
			return v.posts[i].Date > v.posts[j].Date
		}
		return v.posts[i].Slug < v.posts[j].Slug
	})
	for t := range tags {
		v.tags = append(v.tags, t)
	}
	sort.Strings(v.tags)
	return v
}

// ensureLoaded returns the view for code and the per-slug versions after
// ensuring the cache is fresh. It tries a read lock first; only takes a write
// lock if a reload or a new view is needed. Loaded maps are never mutated,
// only replaced.
func (c *PostCache) ensureLoaded(code locale.Code) (*localeView, map[string]map[locale.Code]BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		if v, ok := c.views[code]; ok {
			slugs := c.slugs
			c.mu.RUnlock()
			return v, slugs, nil
		}
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	v, ok := c.views[code]
	if !ok {
		v = c.build(code)
		c.views[code] = v
	}
	return v, c.slugs, nil
}

// ListPosts returns the posts shown to visitors of code, optionally filtered
// by tag. A post is listed when it exists in code or in the default locale;
// posts written only in other locales are left out of lists and reached
// through GetPost, the sitemap and the translation links.
func (c *PostCache) ListPosts(code locale.Code, tag string) ([]BlogPost, error) {
	v, _, err := c.ensureLoaded(code)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return v.posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []BlogPost
	for _, p := range v.posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns the tags of the posts shown to visitors of code.
func (c *PostCache) ListTags(code locale.Code) ([]string, error) {
	v, _, err := c.ensureLoaded(code)
	if err != nil {
		return nil, err
	}
	return v.tags, nil
}

// GetPost returns the version of slug shown to visitors of code: the
// requested locale, else the default locale, else the only translation there
// is (lowest locale code first).
func (c *PostCache) GetPost(slug string, code locale.Code) (BlogPost, error) {
	_, slugs, err := c.ensureLoaded(code)
	if err != nil {
		return BlogPost{}, err
	}
	versions, ok := slugs[slug]
	if !ok || len(versions) == 0 {
		return BlogPost{}, ErrNotFound
	}
	if p, err := locale.Resolve(c.resolver, versions, code); err == nil {
		return p, nil
	}
	return versions[locale.Locales(versions)[0]], nil
}

// Translations returns the locales slug is published in, sorted.
func (c *PostCache) Translations(slug string) ([]locale.Code, error) {
	_, slugs, err := c.ensureLoaded(c.resolver.Default)
	if err != nil {
		return nil, err
	}
	return locale.Locales(slugs[slug]), nil
}
