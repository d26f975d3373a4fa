// Package cli wires configuration, logging and storage into the zach-term
// subcommands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Zachkp/zach-term/internal/config"
)

// app is the state shared by every subcommand once the root has loaded config.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        hclog.Logger
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "zach-term",
		Short:         "Portfolio site that behaves like a terminal",
		Long:          "zach-term serves a terminal-style portfolio over HTTP, runs the same shell locally in your terminal and reports visitor analytics.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./zach-term.toml if present)")
	flags.String("log-level", "", "log level: trace, debug, info, warn or error")
	flags.String("db", "", "path of the SQLite analytics database")
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("db_path", flags.Lookup("db"))

	rootCmd.AddCommand(
		newServeCmd(a),
		newShellCmd(a),
		newStatsCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = hclog.New(&hclog.LoggerOptions{
		Name:   "zach-term",
		Level:  cfg.Level(),
		Output: cmd.ErrOrStderr(),
	})
	return nil
}
