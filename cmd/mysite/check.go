package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	mysite "github.com/kevinypfan/my-site"
	"github.com/kevinypfan/my-site/content"
	"github.com/kevinypfan/my-site/i18n"
	"github.com/kevinypfan/my-site/langswitch"
	"github.com/kevinypfan/my-site/locale"
	"github.com/kevinypfan/my-site/siteconfig"
)

func newCheckCmd(o *options) *cobra.Command {
	var contentFile, messagesDir string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate site configuration, content tables, labels and flags",
		Long: `check loads everything the server loads at startup and reports problems.
Content tables without the default locale and labels missing from a locale
are errors; missing flag images and incomplete provider settings are warnings.
The command exits non-zero when any error is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site := o.cfg.Site
			def := site.DefaultLocale
			logger := mysite.NewLogger(cmd.ErrOrStderr(), o.cfg.LogLevel)

			c, err := loadContent(contentFile, def)
			if err != nil {
				return err
			}
			var b *i18n.Bundle
			if messagesDir != "" {
				b, err = i18n.NewBundle(os.DirFS(messagesDir), def, logger)
			} else {
				b, err = i18n.NewBundle(nil, def, logger)
			}
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), site, c, b, afero.FromIOFS{FS: mysite.FlagAssets})
		},
	}
	cmd.Flags().StringVar(&contentFile, "content", "", "content tables to check instead of the built-in ones (TOML)")
	cmd.Flags().StringVar(&messagesDir, "messages", "", "directory of active.<locale>.toml label files to check instead of the built-in ones")
	return cmd
}

func loadContent(file string, def locale.Code) (*content.Content, error) {
	if file == "" {
		return content.Load(def)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return content.Parse(data, def)
}

// report counts what runCheck prints.
type report struct {
	w      io.Writer
	errors int
	warns  int
}

func (r *report) errorf(format string, args ...any) {
	r.errors++
	fmt.Fprintf(r.w, "error: "+format+"\n", args...)
}

func (r *report) warnf(format string, args ...any) {
	r.warns++
	fmt.Fprintf(r.w, "warning: "+format+"\n", args...)
}

// runCheck validates site, the content tables, every label of every
// locale in b and the flag image of every locale in assets.
func runCheck(w io.Writer, site siteconfig.Site, c *content.Content, b *i18n.Bundle, assets afero.Fs) error {
	r := &report{w: w}

	if err := site.Validate(); err != nil {
		r.errorf("%v", err)
	}
	for _, problem := range site.Warnings() {
		r.warnf("site: %s", problem)
	}

	if err := c.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			r.errorf("content: %s", line)
		}
	}

	locales := b.Locales()
	supported := make(map[locale.Code]bool, len(locales))
	for _, code := range locales {
		supported[code] = true
	}
	for _, code := range c.Locales() {
		if !supported[code] {
			r.warnf("content: locale %s has no label file and cannot be selected", code)
		}
	}

	// The switch menu labels every locale by its code.
	keys := slices.Clone(b.Keys())
	for _, code := range locales {
		if !slices.Contains(keys, string(code)) {
			keys = append(keys, string(code))
		}
	}
	for _, code := range locales {
		strict := b.Strict(code)
		for _, key := range keys {
			if _, err := strict.Lookup(key); err != nil {
				r.errorf("labels: %v", err)
			}
		}

		flag := strings.TrimPrefix(langswitch.FlagPath(code), "/")
		ok, err := afero.Exists(assets, flag)
		switch {
		case err != nil:
			r.warnf("flags: %s: %v", flag, err)
		case !ok:
			r.warnf("flags: %s is missing; the switch for %s shows a broken image", flag, code)
		}
	}

	fmt.Fprintf(w, "%d locale(s), %d error(s), %d warning(s)\n", len(locales), r.errors, r.warns)
	if r.errors > 0 {
		return fmt.Errorf("check failed with %d error(s)", r.errors)
	}
	return nil
}
