package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/forgesites/themekit/internal/tui"
)

func newBrowseCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse themes interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(rootFlags)
		},
	}

	return cmd
}

func runBrowse(rootFlags *rootFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse requires an interactive terminal; use 'themekit themes list' instead")
	}

	app, err := newAppContext(rootFlags)
	if err != nil {
		return err
	}

	model := tui.NewModel(app.themes, app.renderer)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
