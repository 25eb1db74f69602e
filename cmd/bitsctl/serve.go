package main

import (
	"github.com/danmuck/bitsctl/internal/protocol"
	"github.com/danmuck/bitsctl/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd(app *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP decode service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			decoder := protocol.NewDecoder(app.cfg.Decoder.Limits(), app.logger)
			srv := server.New(cfg, decoder, app.cfg.Decoder.Workers)
			app.logger.Info().
				Str("addr", srv.Addr).
				Int("max_digits", app.cfg.Decoder.MaxDigits).
				Int("max_depth", app.cfg.Decoder.MaxDepth).
				Msg("starting decode service")
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}
