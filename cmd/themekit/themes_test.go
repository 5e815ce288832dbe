package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgesites/themekit/internal/theme"
)

func runCommand(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--data", dataDir}, args...))
	require.NoError(t, root.Execute())
	return buf.String()
}

func TestThemesListEmpty(t *testing.T) {
	output := runCommand(t, t.TempDir(), "themes", "list")
	assert.Contains(t, output, "No themes stored yet.")
}

func TestThemesListAndShow(t *testing.T) {
	dataDir := t.TempDir()

	app, err := newAppContext(&rootFlags{dataDir: dataDir})
	require.NoError(t, err)
	created, err := app.themes.CreateTheme(context.Background(), theme.Theme{
		ID:   "ocean",
		Name: "Ocean",
	})
	require.NoError(t, err)

	output := runCommand(t, dataDir, "themes", "list")
	assert.Contains(t, output, "ocean")
	assert.Contains(t, output, "Ocean")
	assert.Contains(t, output, "#3498db")

	output = runCommand(t, dataDir, "themes", "show", created.ID)
	assert.Contains(t, output, `"name": "Ocean"`)

	output = runCommand(t, dataDir, "themes", "history", created.ID)
	assert.Contains(t, output, "VERSION")
	assert.Contains(t, output, "Ocean")
}

func TestCSSCommandEmitsFrameworkAndThemeVariables(t *testing.T) {
	dataDir := t.TempDir()

	app, err := newAppContext(&rootFlags{dataDir: dataDir})
	require.NoError(t, err)
	_, err = app.themes.CreateTheme(context.Background(), theme.Theme{ID: "base", Name: "Base"})
	require.NoError(t, err)

	output := runCommand(t, dataDir, "css", "base")
	assert.Contains(t, output, "--bs-primary: #3498db;")
	assert.Contains(t, output, "--color-primary: #3498db;")

	output = runCommand(t, dataDir, "css", "base", "--sass")
	assert.Contains(t, output, "$primary: #3498db;")

	output = runCommand(t, dataDir, "css", "base", "--plain")
	assert.NotContains(t, output, "--bs-")
	assert.Contains(t, output, "--color-primary: #3498db;")
}
