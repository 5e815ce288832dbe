package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgesites/themekit/internal/theme"
)

func loadedModel(t *testing.T, count int) Model {
	t.Helper()
	items := make([]theme.Theme, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, theme.New(theme.Theme{
			ID:   string(rune('a' + i)),
			Name: "Theme " + string(rune('A'+i)),
		}, time.Now()))
	}
	m := NewModel(nil, nil)
	updated, _ := m.Update(themesLoadedMsg{themes: items})
	model, ok := updated.(Model)
	require.True(t, ok)
	return model
}

func TestCursorWraps(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 3)

	m.moveCursorUp()
	assert.Equal(t, 2, m.cursor)
	m.moveCursorDown()
	assert.Equal(t, 0, m.cursor)
	m.moveCursorDown()
	assert.Equal(t, 1, m.cursor)
}

func TestSelectedOutOfRange(t *testing.T) {
	t.Parallel()

	m := NewModel(nil, nil)
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestThemesLoadedClearsLoading(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 2)
	assert.False(t, m.loading)
	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Theme A", selected.Name)
}

func TestEnterOpensDetail(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 1)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(Model)
	assert.Equal(t, ViewDetail, model.viewMode)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(Model)
	assert.Equal(t, ViewList, model.viewMode)
}

func TestQuitFromListOnly(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 1)
	m.viewMode = ViewDetail

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	model := updated.(Model)
	assert.Equal(t, ViewList, model.viewMode)
	assert.Nil(t, cmd)

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestCSSGeneratedSwitchesView(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 1)
	selected, ok := m.Selected()
	require.True(t, ok)

	updated, _ := m.Update(cssGeneratedMsg{themeID: selected.ID, css: ":root {}"})
	model := updated.(Model)
	assert.Equal(t, ViewCSS, model.viewMode)
	assert.Equal(t, ":root {}", model.cssText)
}

func TestCSSGeneratedForStaleSelectionIgnored(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 2)
	updated, _ := m.Update(cssGeneratedMsg{themeID: "zzz", css: ":root {}"})
	model := updated.(Model)
	assert.Equal(t, ViewList, model.viewMode)
	assert.Empty(t, model.cssText)
}

func TestErrMsgDisplayedInView(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 1)
	updated, _ := m.Update(errMsg{err: errors.New("store unavailable")})
	model := updated.(Model)

	view := model.View()
	assert.Contains(t, view, "store unavailable")
}

func TestViewListShowsThemeNames(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 2)
	view := m.View()
	assert.Contains(t, view, "Theme A")
	assert.Contains(t, view, "Theme B")
}

func TestViewEmptyState(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 0)
	assert.Contains(t, m.View(), "No themes yet")
}

func TestWindowSizeStored(t *testing.T) {
	t.Parallel()

	m := loadedModel(t, 1)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model := updated.(Model)
	assert.Equal(t, 120, model.width)
	assert.Equal(t, 40, model.height)
}
