package cli

import (
	"cmp"
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bimtower/internal/api"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes export, render and model storage over HTTP.

The cache backend, storage backend and server limits come from the config
file and BIMTOWER_* environment variables. Stop with Ctrl+C; in-flight
requests are drained before exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config

			runner, err := c.newRunner(ctx, "api:")
			if err != nil {
				return err
			}
			defer runner.Close()

			repo, err := c.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(context.WithoutCancel(ctx))

			srv := api.New(runner, repo, c.Logger,
				api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
				api.WithExportDefaults(cfg.Export.Header(), cfg.Export.ProjectName),
			)

			listen := cmp.Or(addr, cfg.Server.Addr)
			printInfo(cmd.OutOrStdout(), "Serving on %s", StyleLink.Render(listen))
			printDetail(cmd.OutOrStdout(), "cache: %s · storage: %s", cfg.Cache.Backend, cfg.Storage.Backend)
			return srv.ListenAndServe(ctx, listen, cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
