package render

import (
	"context"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgesites/themekit/internal/cache"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

func newTestRenderer(t *testing.T) (*Renderer, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	return NewRenderer(store, Options{Cache: cache.NewMemory()}), store
}

func TestRenderSourceInterpolatesAndEscapes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newTestRenderer(t)

	out, err := r.RenderSource(ctx, "<p>{{ message }}</p>", map[string]any{
		"message": "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>", out)
}

func TestRenderSourceInsertsPreRenderedHTMLUnescaped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newTestRenderer(t)

	out, err := r.RenderSource(ctx, "<div>{{ widget }}</div>", map[string]any{
		"widget": template.HTML("<b>bold</b>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "<div><b>bold</b></div>", out)
}

func TestRenderSourceForLoopPreservesOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newTestRenderer(t)

	out, err := r.RenderSource(ctx,
		"<ul>{% for item in items %}<li>{{ item }}</li>{% endfor %}</ul>",
		map[string]any{"items": []string{"a", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>a</li><li>b</li><li>c</li></ul>", out)
}

func TestRenderSourceConditional(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newTestRenderer(t)

	source := "{% if admin %}Admin{% else %}Guest{% endif %}"

	out, err := r.RenderSource(ctx, source, map[string]any{"admin": true})
	require.NoError(t, err)
	assert.Equal(t, "Admin", out)

	out, err = r.RenderSource(ctx, source, map[string]any{"admin": false})
	require.NoError(t, err)
	assert.Equal(t, "Guest", out)
}

func TestRenderSourceIncludeRendersComponentInline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, store := newTestRenderer(t)

	require.NoError(t, store.WriteComponentAsset(ctx, "header", "nav", "index.html",
		[]byte(`<nav>{{ siteName }}</nav>`)))

	out, err := r.RenderSource(ctx,
		`<header>{% include "header/nav" %}</header>`,
		map[string]any{"siteName": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "<header><nav>Acme</nav></header>", out)
}

func TestRenderSourceNestedIncludes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, store := newTestRenderer(t)

	require.NoError(t, store.WriteComponentAsset(ctx, "header", "nav", "index.html",
		[]byte(`<nav>{% include "header/logo" %}</nav>`)))
	require.NoError(t, store.WriteComponentAsset(ctx, "header", "logo", "index.html",
		[]byte(`<img alt="{{ siteName }}">`)))

	out, err := r.RenderSource(ctx, `{% include "header/nav" %}`, map[string]any{"siteName": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, `<nav><img alt="Acme"></nav>`, out)
}

func TestRenderSourceMissingComponentNamesPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, _ := newTestRenderer(t)

	_, err := r.RenderSource(ctx, `{% include "header/missing" %}`, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "header")
	assert.Contains(t, err.Error(), "missing")
}

func TestRenderIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, store := newTestRenderer(t)

	require.NoError(t, store.WriteComponentAsset(ctx, "widgets", "price", "index.html",
		[]byte(`<span>{{ currency amount }}</span>`)))

	source := `{% include "widgets/price" %}{% for tag in tags %}<i>{{ tag }}</i>{% endfor %}`
	data := map[string]any{"amount": 1234.5, "tags": []string{"new", "sale"}}

	first, err := r.RenderSource(ctx, source, data)
	require.NoError(t, err)
	second, err := r.RenderSource(ctx, source, data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "$1,234.50")
}

func TestRenderTemplateLoadsFromStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, store := newTestRenderer(t)

	require.NoError(t, store.WriteTemplateSource(ctx, "landing", "hero",
		[]byte(`<h1>{{ headline }}</h1>`)))

	out, err := r.RenderTemplate(ctx, "hero", "landing", map[string]any{"headline": "Welcome"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Welcome</h1>", out)

	_, err = r.RenderTemplate(ctx, "ghost", "landing", nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$1,234.50", currencyHelper(1234.5))
	assert.Equal(t, "€99.00", currencyHelper(99, "€"))
	assert.Equal(t, "-$0.25", currencyHelper(-0.25))
	assert.Equal(t, "$1,000,000.00", currencyHelper(1000000))

	assert.Equal(t, "hello", truncateHelper("hello", 10))
	assert.Equal(t, "hel...", truncateHelper("hello world", 3))
	assert.Equal(t, "", truncateHelper("hello", 0))

	moment := time.Date(2025, 7, 4, 15, 30, 45, 0, time.UTC)
	assert.Equal(t, "Jul 4, 2025", formatDateHelper(moment, "short"))
	assert.Equal(t, "Friday, July 4, 2025", formatDateHelper(moment, "long"))
	assert.Equal(t, "3:30 PM", formatDateHelper(moment, "time"))
	assert.Equal(t, "Jul 4, 2025 3:30 PM", formatDateHelper(moment, "datetime"))
	assert.Equal(t, "2025-07-04 15:30:45", formatDateHelper(moment, "%Y-%m-%d %H:%M:%S"))
	assert.Equal(t, "Jul 4, 2025", formatDateHelper("2025-07-04", "short"))
}

func TestGenerateThemeCSS(t *testing.T) {
	t.Parallel()

	r, _ := newTestRenderer(t)
	th := theme.New(theme.Theme{Name: "CSS"}, time.Now())
	th.Components = map[string]map[string]string{
		"button": {
			"background":  "$colors.primary",
			"borderWidth": "2px",
			"shadow":      "$shadows.unknown",
		},
	}

	css := r.GenerateThemeCSS(th)

	assert.Contains(t, css, ":root {")
	assert.Contains(t, css, "--color-primary: #3498db;")
	assert.Contains(t, css, "--font-size-base: 16px;")
	assert.Contains(t, css, "--spacing-md: 16px;")
	assert.Contains(t, css, "--layout-max-width: 1200px;")
	// Reference resolved through the theme graph.
	assert.Contains(t, css, "--button-background: #3498db;")
	assert.Contains(t, css, "--button-border-width: 2px;")
	// Unresolved references are emitted literally.
	assert.Contains(t, css, "--button-shadow: $shadows.unknown;")
}

func TestGenerateThemeCSSDeterministic(t *testing.T) {
	t.Parallel()

	r, _ := newTestRenderer(t)
	th := theme.New(theme.Theme{Name: "Det"}, time.Now())

	assert.Equal(t, r.GenerateThemeCSS(th), r.GenerateThemeCSS(th))
}

type staticVariables struct{}

func (staticVariables) GenerateCSSVariables(context.Context, theme.Theme) (string, error) {
	return ":root{--bs-primary: #111111;}", nil
}

func TestGenerateCSSVariants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	th := theme.New(theme.Theme{Name: "V"}, time.Now())

	plain := NewRenderer(store, Options{})
	css, err := plain.GenerateCSS(ctx, th)
	require.NoError(t, err)
	assert.NotContains(t, css, "--bs-primary")

	adapted := NewRenderer(store, Options{Variant: FrameworkAdapted, Variables: staticVariables{}})
	css, err = adapted.GenerateCSS(ctx, th)
	require.NoError(t, err)
	assert.Contains(t, css, "--bs-primary: #111111;")
	assert.Contains(t, css, "--color-primary: #3498db;")
}
