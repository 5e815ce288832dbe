package tui

import "github.com/forgesites/themekit/internal/theme"

// themesLoadedMsg carries the result of the initial (or refreshed) list.
type themesLoadedMsg struct {
	themes []theme.Theme
}

// cssGeneratedMsg carries derived CSS for the theme under the cursor.
type cssGeneratedMsg struct {
	themeID string
	css     string
}

// errMsg surfaces a failed command.
type errMsg struct {
	err error
}
