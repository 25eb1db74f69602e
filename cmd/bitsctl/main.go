package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/bitsctl/internal/config"
	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli carries state shared by subcommands once the root has loaded config.
type cli struct {
	configPath string
	cfg        config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{cfg: config.Default(), logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "bitsctl",
		Short: "Decode and evaluate BITS hex transmissions",
		Long: `bitsctl decodes hexadecimal BITS transmissions into packet trees,
reports the sum of every packet version, and evaluates the outermost
expression. It runs one-shot over files or stdin, or as an HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.configPath)
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.logger = logging.Apply(cfg.Log.Logging())
			if app.configPath != "" {
				app.logger.Debug().Str("path", app.configPath).Msg("loaded config")
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "path to a TOML config file")

	rootCmd.AddCommand(
		decodeCmd(app),
		serveCmd(app),
		configCmd(),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	// Runtime defaults cover anything logged before --config is applied.
	logging.ConfigureRuntime()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "bitsctl: %s\n", err)
		stop()
		os.Exit(1)
	}
}
