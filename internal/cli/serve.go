package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zachkp/zach-term/internal/content"
	"github.com/Zachkp/zach-term/internal/store"
	"github.com/Zachkp/zach-term/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			site, err := content.Load(a.cfg.ContentDir)
			if err != nil {
				return fmt.Errorf("load content: %w", err)
			}

			st, err := store.Open(ctx, store.Config{
				Path:   a.cfg.DBPath,
				Logger: a.log.Named("store"),
			})
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := web.New(web.Options{
				Config: a.cfg,
				Site:   site,
				Store:  st,
				Logger: a.log.Named("web"),
			})
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().String("port", "", "port to listen on (overrides PORT)")
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if p, _ := cmd.Flags().GetString("port"); p != "" {
			a.cfg.Port = p
		}
		return nil
	}
	return cmd
}
