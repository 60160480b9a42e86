package main

import (
	"github.com/spf13/cobra"

	"silosremeco/backend/internal/sitemap"
)

func newSitemapCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(log)

			body, err := sitemap.Build(ctx, cfg.PublicSiteURL, a.catalog, log)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
}
