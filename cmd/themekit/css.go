package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type cssOptions struct {
	sass  bool
	plain bool
}

func newCSSCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &cssOptions{}

	cmd := &cobra.Command{
		Use:   "css <theme-id>",
		Short: "Emit a theme's derived CSS or Sass variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			t, err := app.themes.ResolveTheme(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch {
			case opts.sass:
				sass, err := app.adapter.GenerateSassVariables(cmd.Context(), t)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), sass)
			case opts.plain:
				fmt.Fprint(cmd.OutOrStdout(), app.renderer.GenerateThemeCSS(t))
			default:
				css, err := app.renderer.GenerateCSS(cmd.Context(), t)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), css)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.sass, "sass", false, "Emit Sass variables instead of CSS")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Emit theme custom properties without framework variables")

	return cmd
}
