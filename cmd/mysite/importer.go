package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	mysite "github.com/kevinypfan/my-site"
	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/locale"
)

// frontMatterFormats are tried in order: YAML between --- lines, then TOML
// between +++ lines.
var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// postMeta is the front matter of an imported post. Dates are plain
// YYYY-MM-DD strings; quote them in TOML.
type postMeta struct {
	Title   string   `yaml:"title" toml:"title"`
	Date    string   `yaml:"date" toml:"date"`
	Tags    []string `yaml:"tags" toml:"tags"`
	Summary string   `yaml:"summary" toml:"summary"`
	Slug    string   `yaml:"slug" toml:"slug"`
	Locale  string   `yaml:"locale" toml:"locale"`
	Draft   bool     `yaml:"draft" toml:"draft"`
}

// parsePost reads one Markdown file. A file named hello.zh-Hant-TW.md is the
// zh-Hant-TW version of the post "hello" unless its front matter says
// otherwise; files without a locale suffix are in def.
func parsePost(data []byte, name string, def locale.Code) (mysite.BlogPost, error) {
	var meta postMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta, frontMatterFormats...)
	if err != nil {
		return mysite.BlogPost{}, fmt.Errorf("%s: front matter: %w", name, err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return mysite.BlogPost{}, fmt.Errorf("%s: title is required", name)
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	code := def
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		if _, err := language.Parse(base[i+1:]); err == nil {
			code = locale.Code(base[i+1:])
			base = base[:i]
		}
	}
	if meta.Locale != "" {
		code = locale.Code(meta.Locale)
	}

	slug := meta.Slug
	if slug == "" {
		slug = mysite.Slugify(base)
	}
	if slug == "" {
		return mysite.BlogPost{}, fmt.Errorf("%s: cannot derive a slug", name)
	}

	date := strings.TrimSpace(meta.Date)
	if len(date) > len("2006-01-02") {
		// YAML timestamps such as 2024-01-02T15:04:05Z keep only the day.
		date = date[:len("2006-01-02")]
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return mysite.BlogPost{}, fmt.Errorf("%s: date %q is not YYYY-MM-DD", name, meta.Date)
	}

	return mysite.BlogPost{
		Slug:      slug,
		Locale:    code,
		Title:     strings.TrimSpace(meta.Title),
		Date:      date,
		Tags:      mysite.FilterEmpty(meta.Tags),
		Summary:   strings.TrimSpace(meta.Summary),
		Content:   strings.TrimSpace(string(body)),
		Published: !meta.Draft,
	}, nil
}

// importPosts parses every .md file under dir and hands the posts to save.
// Nothing is saved when any file is invalid.
func importPosts(fsys afero.Fs, dir string, def locale.Code, supported []locale.Code, save func(mysite.BlogPost) error, logger *slog.Logger) (int, error) {
	var posts []mysite.BlogPost
	seen := make(map[string]string)
	err := afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		post, err := parsePost(data, path, def)
		if err != nil {
			return err
		}
		if !slices.Contains(supported, post.Locale) {
			return fmt.Errorf("%s: unsupported locale %q (have %v)", path, post.Locale, supported)
		}
		key := post.Slug + "/" + string(post.Locale)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%s: %s in %s is also defined by %s", path, post.Slug, post.Locale, prev)
		}
		seen[key] = path
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i, p := range posts {
		if err := save(p); err != nil {
			return i, fmt.Errorf("save %s (%s): %w", p.Slug, p.Locale, err)
		}
		logger.Debug("post saved", "slug", p.Slug, "locale", p.Locale, "published", p.Published)
	}
	return len(posts), nil
}

func newImportCmd(o *options) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import Markdown posts with front matter into the database",
		Long: `import reads every .md file under dir. Each file carries YAML (---) or
TOML (+++) front matter with title, date, tags, summary, slug, locale and
draft. hello.zh-Hant-TW.md is the zh-Hant-TW version of "hello". Existing
versions with the same slug and locale are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := mysite.NewLogger(cmd.ErrOrStderr(), o.cfg.LogLevel)
			def := o.cfg.Site.DefaultLocale

			b, err := i18n.NewBundle(nil, def, logger)
			if err != nil {
				return err
			}

			save := func(p mysite.BlogPost) error {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.Locale, p.Slug, p.Title)
				return nil
			}
			if !dryRun {
				store, err := mysite.NewStore(o.cfg.DatabasePath)
				if err != nil {
					return err
				}
				defer store.Close()
				save = store.SavePost
			}

			n, err := importPosts(afero.NewOsFs(), args[0], def, b.Locales(), save, logger)
			if err != nil {
				return err
			}
			verb := "imported"
			if dryRun {
				verb = "parsed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d post(s) %s\n", n, verb)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and list the posts without writing them")
	return cmd
}
