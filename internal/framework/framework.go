// Package framework maps generic theme tokens onto Bootstrap's variable
// vocabulary. The adapter emits CSS custom properties or Sass variables and
// resolves each Bootstrap name through a fixed fallback chain of theme token
// paths.
package framework

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/forgesites/themekit/internal/logger"
	"github.com/forgesites/themekit/internal/ports"
	"github.com/forgesites/themekit/internal/render"
	"github.com/forgesites/themekit/internal/theme"
)

var _ render.VariableGenerator = (*Adapter)(nil)

const outputCacheTTL = 30 * time.Minute

// variable binds a Bootstrap variable name to its ordered fallback chain of
// theme token paths. An empty fallback means the variable is omitted entirely
// when no path in the chain resolves.
type variable struct {
	name     string
	chain    []string
	fallback string
}

// variables is the adapter's contract: chain order is load-bearing. The
// danger slot prefers the theme's accent over its error color.
var variables = []variable{
	{"primary", []string{"colors.primary"}, "#0d6efd"},
	{"secondary", []string{"colors.secondary"}, "#6c757d"},
	{"success", []string{"colors.success"}, "#198754"},
	{"danger", []string{"colors.accent", "colors.error"}, "#dc3545"},
	{"warning", []string{"colors.warning"}, "#ffc107"},
	{"info", []string{"colors.info"}, "#0dcaf0"},
	{"light", []string{"colors.surface", "colors.light"}, "#f8f9fa"},
	{"dark", []string{"colors.dark", "colors.text"}, "#212529"},
	{"body-bg", []string{"colors.background"}, "#ffffff"},
	{"body-color", []string{"colors.text"}, "#212529"},
	{"body-font-family", []string{"typography.fontFamily.base"}, "system-ui, -apple-system, sans-serif"},
	{"body-font-size", []string{"typography.fontSize.base"}, "1rem"},
	{"body-line-height", []string{"typography.lineHeight.base"}, "1.5"},
	{"heading-font-family", []string{"typography.fontFamily.heading"}, ""},
	{"heading-font-weight", []string{"typography.fontWeight.bold"}, ""},
	{"border-color", []string{"colors.border"}, ""},
	{"border-radius", []string{"borders.radius"}, ""},
	{"box-shadow", []string{"shadows.md"}, ""},
}

// componentClasses maps (component type, id) pairs to Bootstrap class names.
var componentClasses = map[string]map[string]string{
	"button": {
		"primary":   "btn btn-primary",
		"secondary": "btn btn-secondary",
		"outline":   "btn btn-outline-primary",
		"link":      "btn btn-link",
		"danger":    "btn btn-danger",
	},
	"nav": {
		"bar":   "navbar navbar-expand-lg",
		"tabs":  "nav nav-tabs",
		"pills": "nav nav-pills",
	},
	"card": {
		"basic":      "card",
		"horizontal": "card flex-row",
	},
	"form": {
		"input":  "form-control",
		"select": "form-select",
		"check":  "form-check-input",
	},
	"alert": {
		"info":    "alert alert-info",
		"warning": "alert alert-warning",
		"danger":  "alert alert-danger",
	},
}

// Options configures an Adapter.
type Options struct {
	Cache  ports.Cache
	Logger *logger.Logger
}

// Adapter generates Bootstrap variable text for themes. Output is cached by
// a hash of the serialized theme; entries expire with the cache TTL and are
// never explicitly invalidated.
type Adapter struct {
	cache ports.Cache
	log   *logger.Logger
}

// NewAdapter creates a Bootstrap adapter.
func NewAdapter(opts Options) *Adapter {
	return &Adapter{
		cache: opts.Cache,
		log:   opts.Logger.Component("framework"),
	}
}

// GenerateCSSVariables emits a :root block of --bs-* custom properties for
// the theme. Each variable resolves through its fallback chain; chains with
// no hard default are omitted when unresolved.
func (a *Adapter) GenerateCSSVariables(ctx context.Context, t theme.Theme) (string, error) {
	return a.cached(ctx, "framework_css_", t, func() string {
		var b strings.Builder
		b.WriteString(":root {\n")
		for _, v := range variables {
			value, ok := resolve(t, v)
			if !ok {
				continue
			}
			b.WriteString("  --bs-")
			b.WriteString(v.name)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString(";\n")
		}
		b.WriteString("}\n")
		return b.String()
	})
}

// GenerateSassVariables emits the same mapping as $-prefixed Sass variable
// declarations for preprocessor pipelines.
func (a *Adapter) GenerateSassVariables(ctx context.Context, t theme.Theme) (string, error) {
	return a.cached(ctx, "framework_sass_", t, func() string {
		var b strings.Builder
		for _, v := range variables {
			value, ok := resolve(t, v)
			if !ok {
				continue
			}
			b.WriteString("$")
			b.WriteString(v.name)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString(";\n")
		}
		return b.String()
	})
}

// MapComponent returns the Bootstrap class list for a component type and id.
// Unknown combinations fall back to "<type>-default" rather than failing.
func (a *Adapter) MapComponent(componentType, id string) string {
	if byID, ok := componentClasses[componentType]; ok {
		if class, ok := byID[id]; ok {
			return class
		}
	}
	a.log.WithFields(map[string]any{"type": componentType, "id": id}).
		Debug("no bootstrap mapping, using default class")
	return componentType + "-default"
}

func resolve(t theme.Theme, v variable) (string, bool) {
	for _, path := range v.chain {
		if value, ok := theme.Token(t, path); ok {
			return value, true
		}
	}
	if v.fallback == "" {
		return "", false
	}
	return v.fallback, true
}

func (a *Adapter) cached(ctx context.Context, prefix string, t theme.Theme, build func() string) (string, error) {
	key := prefix + themeHash(t)
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, key); ok {
			if text, ok := cached.(string); ok {
				return text, nil
			}
		}
	}
	text := build()
	if a.cache != nil {
		_ = a.cache.Set(ctx, key, text, outputCacheTTL)
	}
	return text, nil
}

// themeHash keys the output cache on theme content, so two saves of the same
// tokens share an entry regardless of timestamps.
func themeHash(t theme.Theme) string {
	t.CreatedAt = time.Time{}
	t.UpdatedAt = time.Time{}
	raw, err := json.Marshal(t)
	if err != nil {
		return t.ID
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
