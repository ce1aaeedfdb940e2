package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform"
	"github.com/goliatone/go-orderform/pkg/renderers/tui"
)

func orderCmd(flags *globalFlags) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Fill in and place an order interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if endpoint != "" {
				cfg.Endpoint.BaseURL = endpoint
			}
			controller, err := orderform.NewController(orderform.Config{
				BaseURL: cfg.Endpoint.BaseURL,
				Timeout: cfg.Endpoint.Timeout,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			options := []tui.Option{tui.WithLogger(logger)}
			in, inOK := cmd.InOrStdin().(terminal.FileReader)
			out, outOK := cmd.OutOrStdout().(terminal.FileWriter)
			if inOK && outOK {
				options = append(options, tui.WithStdio(in, out))
			}
			session, err := tui.NewSession(controller, options...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			_, err = session.Run(ctx)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, tui.ErrAborted), errors.Is(err, context.Canceled):
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
				return nil
			case errors.Is(err, tui.ErrDeclined):
				fmt.Fprintln(cmd.OutOrStdout(), "order not placed")
				return nil
			default:
				return err
			}
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "order service base URL (overrides config)")
	return cmd
}
