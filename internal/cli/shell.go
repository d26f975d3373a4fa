package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zachkp/zach-term/internal/content"
	"github.com/Zachkp/zach-term/internal/tui"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run the portfolio shell in this terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			site, err := content.Load(a.cfg.ContentDir)
			if err != nil {
				return fmt.Errorf("load content: %w", err)
			}
			return tui.Run(cmd.Context(), tui.Options{
				Site:      site,
				SiteURL:   a.cfg.SiteURL,
				IdleAfter: a.cfg.IdleAfter,
			})
		},
	}
}
