package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-orderform/pkg/form"
	"github.com/goliatone/go-orderform/pkg/renderers/html"
	"github.com/goliatone/go-orderform/pkg/validation"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		output  string
		variant string
		action  string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the empty order page as HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := flags.load()
			if err != nil {
				return err
			}
			if variant == "" {
				variant = cfg.Theme.Variant
			}

			renderer, err := html.New(
				html.WithTheme(html.DefaultManifest(), variant),
				html.WithAction(action),
			)
			if err != nil {
				return err
			}
			state := form.New(validation.New(), nil).State()

			var buf bytes.Buffer
			if err := renderer.Render(&buf, state); err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write HTML to this file instead of stdout")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant (overrides config)")
	cmd.Flags().StringVar(&action, "action", "/", "form post target")
	return cmd
}
