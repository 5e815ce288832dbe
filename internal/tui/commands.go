package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgesites/themekit/internal/theme"
)

func loadThemesCmd(themes *theme.Manager) tea.Cmd {
	return func() tea.Msg {
		listed, err := themes.ListThemes(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return themesLoadedMsg{themes: listed}
	}
}

func generateCSSCmd(css CSSProvider, t theme.Theme) tea.Cmd {
	return func() tea.Msg {
		text, err := css.GenerateCSS(context.Background(), t)
		if err != nil {
			return errMsg{err: err}
		}
		return cssGeneratedMsg{themeID: t.ID, css: text}
	}
}
