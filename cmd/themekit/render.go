package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type renderOptions struct {
	dataFile string
	themeID  string
}

func newRenderCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <category> <template-id>",
		Short: "Render a stored template against a data file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}

			data := map[string]any{}
			if opts.dataFile != "" {
				raw, err := os.ReadFile(opts.dataFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &data); err != nil {
					return fmt.Errorf("parse %s: %w", opts.dataFile, err)
				}
			}
			if opts.themeID != "" {
				t, err := app.themes.ResolveTheme(cmd.Context(), opts.themeID)
				if err != nil {
					return err
				}
				data["theme"] = t
			}

			html, err := app.renderer.RenderTemplate(cmd.Context(), args[1], args[0], data)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dataFile, "data", "", "JSON file with the template data context")
	cmd.Flags().StringVar(&opts.themeID, "theme", "", "Theme id to expose to the template as .theme")

	return cmd
}
