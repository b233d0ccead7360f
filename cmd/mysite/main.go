// Command mysite runs the blog server and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mysite "github.com/kevinypfan/my-site"
)

// version is set at build time via ldflags.
var version = "dev"

// options is shared by every subcommand; cfg is filled in before any of
// them runs.
type options struct {
	siteFile string
	cfg      mysite.Config
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "mysite",
		Short: "A bilingual personal blog",
		Long: `mysite serves a personal blog in English and Traditional Chinese.

Site settings come from an optional TOML file (--config), a .env file and the
environment. ADMIN_PASSWORD and ADMIN_SESSION_SECRET are read from the
environment only.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := mysite.LoadConfig(o.siteFile)
			if err != nil {
				return err
			}
			o.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&o.siteFile, "config", "", "site configuration file (TOML)")
	root.AddCommand(
		newServeCmd(o),
		newCheckCmd(o),
		newImportCmd(o),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mysite version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mysite %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
