package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	dataDir string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "themekit",
		Short:         "Themekit manages site themes, templates, and component bundles",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runBrowse(flags)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.dataDir, "data", "", "Data directory (default $THEMEKIT_DATA or ~/.themekit)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newThemesCmd(flags))
	cmd.AddCommand(newCSSCmd(flags))
	cmd.AddCommand(newRenderCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newPackCmd(flags))
	cmd.AddCommand(newBrowseCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
