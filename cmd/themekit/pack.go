package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgesites/themekit/internal/importer"
)

func newPackCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Install theme packs",
	}

	cmd.AddCommand(newPackImportCmd(rootFlags))

	return cmd
}

func newPackImportCmd(rootFlags *rootFlags) *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "import <repo-url-or-dir>",
		Short: "Import a pack from a git repository or local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(rootFlags)
			if err != nil {
				return err
			}

			source := args[0]
			var report *importer.Report
			if info, statErr := os.Stat(source); statErr == nil && info.IsDir() {
				report, err = app.importer.ImportDir(cmd.Context(), source)
			} else {
				report, err = app.importer.ImportPack(cmd.Context(), source, ref)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported pack %q", report.Pack)
			if report.Version != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (version %s)", report.Version)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			printPackSection(cmd, "Templates", report.Templates)
			printPackSection(cmd, "Components", report.Components)
			printPackSection(cmd, "Themes", report.Themes)
			return nil
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Branch to clone (default: remote default branch)")

	return cmd
}

func printPackSection(cmd *cobra.Command, label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", label, strings.Join(ids, ", "))
}
