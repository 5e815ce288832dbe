package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgesites/themekit/internal/theme"
)

func newPreviewCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Create, apply, and clean up theme previews",
	}

	cmd.AddCommand(newPreviewCreateCmd(rootFlags))
	cmd.AddCommand(newPreviewApplyCmd(rootFlags))
	cmd.AddCommand(newPreviewListCmd(rootFlags))
	cmd.AddCommand(newPreviewCleanupCmd(rootFlags))

	return cmd
}

func newPreviewCreateCmd(rootFlags *rootFlags) *cobra.Command {
	var changesFile string

	cmd := &cobra.Command{
		Use:   "create <site-id>",
		Short: "Preview a change set merged onto a site's theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}

			var changes theme.Changes
			if changesFile != "" {
				raw, err := os.ReadFile(changesFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &changes); err != nil {
					return fmt.Errorf("parse %s: %w", changesFile, err)
				}
			}

			desc, err := app.previews.Create(cmd.Context(), args[0], changes)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(desc)
		},
	}

	cmd.Flags().StringVar(&changesFile, "changes", "", "JSON file with the partial theme to preview")

	return cmd
}

func newPreviewApplyCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <preview-id>",
		Short: "Persist a preview as a real theme version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			applied, err := app.previews.Apply(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied preview to %s (version %s)\n",
				applied.ID, applied.Metadata["version"])
			return nil
		},
	}

	return cmd
}

func newPreviewListCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <site-id>",
		Short: "List a site's live previews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			previews, err := app.previews.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(previews) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No live previews.")
				return nil
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tCREATED\tEXPIRES IN\tURL")
			for _, p := range previews {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					p.ID,
					p.CreatedAt.Format("15:04:05"),
					time.Until(p.ExpiresAt).Round(time.Second),
					p.URL,
				)
			}
			return writer.Flush()
		},
	}

	return cmd
}

func newPreviewCleanupCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired previews from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}
			pruned, err := app.previews.CleanupExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired previews\n", pruned)
			return nil
		},
	}

	return cmd
}
