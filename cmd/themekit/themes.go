package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/forgesites/themekit/internal/theme"
	"github.com/forgesites/themekit/pkg/diff"
)

type themesListOptions struct {
	jsonOutput bool
}

func newThemesCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Inspect and manage stored themes",
	}

	cmd.AddCommand(newThemesListCmd(rootFlags))
	cmd.AddCommand(newThemesShowCmd(rootFlags))
	cmd.AddCommand(newThemesHistoryCmd(rootFlags))
	cmd.AddCommand(newThemesRevertCmd(rootFlags))
	cmd.AddCommand(newThemesDiffCmd(rootFlags))

	return cmd
}

func newThemesListCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &themesListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			themes, err := app.themes.ListThemes(cmd.Context())
			if err != nil {
				return err
			}
			if len(themes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No themes stored yet.")
				fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'themekit pack import <url>' to install a starter pack.")
				return nil
			}
			if opts.jsonOutput {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(themes)
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tVERSION\tPRIMARY\tUPDATED")
			for _, t := range themes {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					t.ID,
					t.Name,
					valueOrFallback(t.Metadata["version"], "-"),
					valueOrFallback(t.Colors["primary"], "-"),
					t.UpdatedAt.Format("2006-01-02 15:04"),
				)
			}
			return writer.Flush()
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func newThemesShowCmd(rootFlags *rootFlags) *cobra.Command {
	var resolved bool

	cmd := &cobra.Command{
		Use:   "show <theme-id>",
		Short: "Print one theme as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			load := app.themes.GetTheme
			if resolved {
				load = app.themes.ResolveTheme
			}
			t, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(t)
		},
	}

	cmd.Flags().BoolVar(&resolved, "resolved", false, "Merge the parent chain before printing")

	return cmd
}

func newThemesHistoryCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <theme-id>",
		Short: "Show a theme's version history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			history, err := app.themes.GetThemeHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "VERSION\tNAME\tSAVED")
			for _, entry := range history {
				fmt.Fprintf(writer, "%s\t%s\t%s\n",
					valueOrFallback(entry.Metadata["version"], "-"),
					entry.Name,
					entry.UpdatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			return writer.Flush()
		},
	}

	return cmd
}

func newThemesRevertCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revert <theme-id> <version>",
		Short: "Restore a historical version as a new version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			reverted, err := app.themes.RevertThemeToVersion(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reverted %s to version %s (now version %s)\n",
				reverted.ID, args[1], reverted.Metadata["version"])
			return nil
		},
	}

	return cmd
}

func newThemesDiffCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <theme-id> <version-a> <version-b>",
		Short: "Show what changed between two historical versions",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			history, err := app.themes.GetThemeHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			before, err := findVersion(history, args[1])
			if err != nil {
				return err
			}
			after, err := findVersion(history, args[2])
			if err != nil {
				return err
			}

			out, err := diff.Themes(before, after)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No token changes between versions.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	return cmd
}

func findVersion(history []theme.Theme, version string) (theme.Theme, error) {
	for _, entry := range history {
		if entry.Metadata["version"] == version {
			return entry, nil
		}
	}
	return theme.Theme{}, fmt.Errorf("version %s not found in history", version)
}

func valueOrFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
