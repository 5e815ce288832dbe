package component

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgesites/themekit/internal/cache"
	"github.com/forgesites/themekit/internal/render"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

func newTestManager(t *testing.T) (*Manager, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	renderer := render.NewRenderer(store, render.Options{})
	return NewManager(store, renderer, ManagerOptions{Cache: cache.NewMemory()}), store
}

func writeComponent(t *testing.T, store *storage.Store, category, id, config, markup, style, script string) {
	t.Helper()
	ctx := context.Background()
	if config != "" {
		require.NoError(t, store.WriteComponentAsset(ctx, category, id, "config.json", []byte(config)))
	}
	if markup != "" {
		require.NoError(t, store.WriteComponentAsset(ctx, category, id, "index.html", []byte(markup)))
	}
	if style != "" {
		require.NoError(t, store.WriteComponentAsset(ctx, category, id, "style.css", []byte(style)))
	}
	if script != "" {
		require.NoError(t, store.WriteComponentAsset(ctx, category, id, "script.js", []byte(script)))
	}
}

const navConfig = `{
  "name": "Navigation",
  "version": "1.0.0",
  "options": [
    {"id": "sticky", "type": "boolean", "default": false},
    {"id": "label", "type": "string", "default": "Menu"}
  ]
}`

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "nav", navConfig, "<nav></nav>", "", "")

	cfg, err := m.LoadConfig(ctx, "nav", "header")
	require.NoError(t, err)
	assert.Equal(t, "Navigation", cfg.Name)
	require.Len(t, cfg.Options, 2)
	assert.Equal(t, "sticky", cfg.Options[0].ID)
}

func TestLoadConfigMissingIsFatal(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	_, err := m.LoadConfig(context.Background(), "ghost", "header")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLoadConfigMalformed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "broken", `{"name": `, "", "", "")

	_, err := m.LoadConfig(ctx, "broken", "header")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestLoadConfigRejectsMissingName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "anon", `{"options": []}`, "", "", "")

	_, err := m.LoadConfig(ctx, "anon", "header")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestOptionalAssetsDegradeToEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "nav", navConfig, "<nav></nav>", "", "")

	assert.Equal(t, "", m.LoadStyles(ctx, "nav", "header"))
	assert.Equal(t, "", m.LoadScript(ctx, "nav", "header"))
}

func TestEffectiveOptions(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Name: "X",
		Options: []Option{
			{ID: "sticky", Default: false},
			{ID: "label", Default: "Menu"},
		},
	}

	effective := EffectiveOptions(cfg, map[string]any{
		"sticky":     true,
		"undeclared": "ignored",
	})

	assert.Equal(t, true, effective["sticky"])
	assert.Equal(t, "Menu", effective["label"])
	_, present := effective["undeclared"]
	assert.False(t, present)
}

func TestRenderComponent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "nav",
		navConfig,
		`<nav>{{ options.label }} for {{ siteName }}</nav>`,
		".nav{display:flex}",
		"initNav();")

	result, err := m.Render(ctx, "nav", "header",
		map[string]any{"siteName": "Acme"},
		map[string]any{"label": "Main"})
	require.NoError(t, err)

	assert.Equal(t, "<nav>Main for Acme</nav>", string(result.HTML))
	assert.Equal(t, ".nav{display:flex}", result.CSS)
	assert.Equal(t, "initNav();", result.JS)
	assert.Equal(t, "Navigation", result.Config.Name)
}

func TestRenderComponentMissingMarkupIsFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "nav", navConfig, "", "", "")

	_, err := m.Render(ctx, "nav", "header", nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateBundleConcatenatesInListOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "nav", navConfig, "<nav></nav>", ".nav{}", "nav();")
	writeComponent(t, store, "footer", "links", `{"name":"Links"}`, "<ul></ul>", ".links{}", "links();")

	bundle, err := m.CreateBundle(ctx, "site-1", []BundleRequest{
		{ID: "nav", Category: "header"},
		{ID: "links", Category: "footer"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"header/nav", "footer/links"}, bundle.Included)
	assert.Less(t, strings.Index(bundle.CSS, ".nav{}"), strings.Index(bundle.CSS, ".links{}"))
	assert.Less(t, strings.Index(bundle.JS, "nav();"), strings.Index(bundle.JS, "links();"))
}

func TestCreateBundlePrependsThemeCSS(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "nav", navConfig, "<nav></nav>", ".nav{}", "")

	th := theme.New(theme.Theme{Name: "B"}, time.Now())
	bundle, err := m.CreateBundle(ctx, "site-2", []BundleRequest{{ID: "nav", Category: "header"}}, &th)
	require.NoError(t, err)

	themeIdx := strings.Index(bundle.CSS, "--color-primary")
	navIdx := strings.Index(bundle.CSS, ".nav{}")
	require.GreaterOrEqual(t, themeIdx, 0)
	require.GreaterOrEqual(t, navIdx, 0)
	assert.Less(t, themeIdx, navIdx)
}

func TestCreateBundleSkipsFailingComponent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store := newTestManager(t)
	writeComponent(t, store, "header", "nav", navConfig, "<nav></nav>", ".nav{}", "")

	bundle, err := m.CreateBundle(ctx, "site-3", []BundleRequest{
		{ID: "missing", Category: "header"},
		{ID: "nav", Category: "header"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"header/nav"}, bundle.Included)
	assert.Equal(t, []string{"header/missing"}, bundle.Skipped)
	assert.Contains(t, bundle.CSS, ".nav{}")
}
