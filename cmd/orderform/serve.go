package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform"
	"github.com/goliatone/go-orderform/internal/server"
	"github.com/goliatone/go-orderform/pkg/renderers/html"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the order page over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			factory, err := orderform.NewControllerFactory(orderform.Config{
				BaseURL: cfg.Endpoint.BaseURL,
				Timeout: cfg.Endpoint.Timeout,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			renderer, err := html.New(html.WithTheme(html.DefaultManifest(), cfg.Theme.Variant))
			if err != nil {
				return err
			}
			srv, err := server.New(renderer, factory,
				server.WithLogger(logger.Named("server")),
				server.WithSessions(cfg.Server.SessionCapacity, cfg.Server.SessionTTL),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
