// Package tui implements the interactive theme browser: a list of stored
// themes with a detail pane showing color swatches, typography, and the
// derived CSS.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/forgesites/themekit/internal/theme"
)

// ViewMode selects which pane layout the browser renders.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewCSS
)

// CSSProvider derives CSS for the detail pane. The template renderer
// satisfies this.
type CSSProvider interface {
	GenerateCSS(ctx context.Context, t theme.Theme) (string, error)
}

// Model is the theme browser model.
type Model struct {
	themes *theme.Manager
	css    CSSProvider

	items  []theme.Theme
	cursor int

	viewMode  ViewMode
	cssText   string
	cssScroll int

	loading  bool
	errorMsg string
	spinner  spinner.Model

	width  int
	height int
}

// NewModel creates a browser model over a theme manager.
func NewModel(themes *theme.Manager, css CSSProvider) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		themes:   themes,
		css:      css,
		viewMode: ViewList,
		loading:  true,
		spinner:  s,
		width:    80,
		height:   24,
	}
}

// Init kicks off the initial theme load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadThemesCmd(m.themes))
}

// Selected returns the theme under the cursor.
func (m Model) Selected() (theme.Theme, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return theme.Theme{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) moveCursorUp() {
	if len(m.items) == 0 {
		return
	}
	m.cursor--
	if m.cursor < 0 {
		m.cursor = len(m.items) - 1
	}
}

func (m *Model) moveCursorDown() {
	if len(m.items) == 0 {
		return
	}
	m.cursor++
	if m.cursor >= len(m.items) {
		m.cursor = 0
	}
}
