package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case themesLoadedMsg:
		m.items = msg.themes
		m.loading = false
		if m.cursor >= len(m.items) {
			m.cursor = 0
		}
		return m, nil

	case cssGeneratedMsg:
		if selected, ok := m.Selected(); ok && selected.ID == msg.themeID {
			m.cssText = msg.css
			m.cssScroll = 0
			m.viewMode = ViewCSS
		}
		return m, nil

	case errMsg:
		m.errorMsg = msg.err.Error()
		m.loading = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {

	case "ctrl+c", "q":
		if m.viewMode != ViewList {
			m.viewMode = ViewList
			return m, nil
		}
		return m, tea.Quit

	case "esc":
		m.viewMode = ViewList
		m.errorMsg = ""
		return m, nil

	case "up", "k":
		if m.viewMode == ViewCSS {
			if m.cssScroll > 0 {
				m.cssScroll--
			}
			return m, nil
		}
		m.moveCursorUp()
		return m, nil

	case "down", "j":
		if m.viewMode == ViewCSS {
			m.cssScroll++
			return m, nil
		}
		m.moveCursorDown()
		return m, nil

	case "enter":
		if m.viewMode == ViewList {
			if _, ok := m.Selected(); ok {
				m.viewMode = ViewDetail
			}
		}
		return m, nil

	case "c":
		selected, ok := m.Selected()
		if !ok || m.css == nil {
			return m, nil
		}
		return m, generateCSSCmd(m.css, selected)

	case "r":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, loadThemesCmd(m.themes))
	}

	return m, nil
}
