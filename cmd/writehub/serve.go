package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbaille/writehub/internal/api"
	"github.com/pbaille/writehub/internal/logging"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				server := api.New(a.journal, a.archive, logging.Component(a.log, "api"), addr)
				return server.Run(ctx)
			})
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default server.addr)")
	return cmd
}
