package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mysite "github.com/kevinypfan/my-site"
	"github.com/kevinypfan/my-site/views"
)

func newServeCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := mysite.New(cfg, views.Default())
			defer app.Close()
			return app.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address (overrides ADDR)")
	return cmd
}
