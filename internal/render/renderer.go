package render

import (
	"bytes"
	"context"
	"html/template"
	"sort"
	"time"

	"github.com/forgesites/themekit/internal/logger"
	"github.com/forgesites/themekit/internal/ports"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

// Variant selects the renderer's CSS capability once at construction. A
// FrameworkAdapted renderer prepends framework variables to derived CSS; a
// Plain renderer emits theme custom properties only.
type Variant uint8

const (
	Plain Variant = iota
	FrameworkAdapted
)

const sourceCacheTTL = 30 * time.Minute

// VariableGenerator produces framework-specific variable text for a theme.
// The framework adapter satisfies this.
type VariableGenerator interface {
	GenerateCSSVariables(ctx context.Context, t theme.Theme) (string, error)
}

// Options configures a Renderer.
type Options struct {
	Cache     ports.Cache
	Logger    *logger.Logger
	Variant   Variant
	Variables VariableGenerator
}

// Renderer loads template and component sources, lowers the directive
// language onto html/template, compiles against a data context, and derives
// CSS text from themes.
type Renderer struct {
	store     *storage.Store
	cache     ports.Cache
	log       *logger.Logger
	variant   Variant
	variables VariableGenerator
}

// NewRenderer creates a renderer backed by the given asset store.
func NewRenderer(store *storage.Store, opts Options) *Renderer {
	variant := opts.Variant
	if opts.Variables == nil {
		variant = Plain
	}
	return &Renderer{
		store:     store,
		cache:     opts.Cache,
		log:       opts.Logger.Component("renderer"),
		variant:   variant,
		variables: opts.Variables,
	}
}

// LoadTemplate fetches raw template source by (category, id), caching it.
func (r *Renderer) LoadTemplate(ctx context.Context, id, category string) (string, error) {
	return r.loadSource(ctx, "template_src_"+category+"_"+id, func() (string, error) {
		return r.store.ReadTemplateSource(ctx, category, id)
	})
}

// LoadComponent fetches raw component markup by (category, id), caching it.
// The source registers as a reusable partial under "category_id" during
// rendering.
func (r *Renderer) LoadComponent(ctx context.Context, id, category string) (string, error) {
	return r.loadSource(ctx, "component_src_"+category+"_"+id, func() (string, error) {
		return r.store.ReadComponentAsset(ctx, category, id, "index.html")
	})
}

func (r *Renderer) loadSource(ctx context.Context, key string, fetch func() (string, error)) (string, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, key); ok {
			if source, ok := cached.(string); ok {
				return source, nil
			}
		}
	}
	source, err := fetch()
	if err != nil {
		return "", err
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, key, source, sourceCacheTTL)
	}
	return source, nil
}

// RenderTemplate loads a template source and renders it against data.
func (r *Renderer) RenderTemplate(ctx context.Context, id, category string, data map[string]any) (string, error) {
	source, err := r.LoadTemplate(ctx, id, category)
	if err != nil {
		return "", err
	}
	return r.RenderSource(ctx, source, data)
}

// RenderSource lowers directive source and compiles it against data. Every
// component referenced by an include directive (directly or transitively) is
// loaded and registered as a partial before compilation begins. Interpolated
// values are escaped; values of type template.HTML pass through unescaped.
func (r *Renderer) RenderSource(ctx context.Context, source string, data map[string]any) (string, error) {
	nodes, err := Parse(source)
	if err != nil {
		return "", err
	}

	partials := map[string][]*Node{}
	if err := r.collectPartials(ctx, nodes, partials); err != nil {
		return "", err
	}

	root := template.New("root").Funcs(helperFuncs())
	for _, key := range sortedKeys(partials) {
		if _, err := root.New(key).Parse(Lower(partials[key])); err != nil {
			return "", apperrors.WrapValidationError("partial "+key, err)
		}
	}
	if _, err := root.Parse(Lower(nodes)); err != nil {
		return "", apperrors.WrapValidationError("template", err)
	}

	var buf bytes.Buffer
	if err := root.Execute(&buf, data); err != nil {
		return "", apperrors.WrapValidationError("render", err)
	}
	return buf.String(), nil
}

// collectPartials preloads every included component source, recursively, so
// partial resolution never happens as a runtime fallback.
func (r *Renderer) collectPartials(ctx context.Context, nodes []*Node, partials map[string][]*Node) error {
	for _, include := range Includes(nodes) {
		key := PartialKey(include.Category, include.Component)
		if _, seen := partials[key]; seen {
			continue
		}

		source, err := r.LoadComponent(ctx, include.Component, include.Category)
		if err != nil {
			return err
		}
		partialNodes, err := Parse(source)
		if err != nil {
			return apperrors.WrapValidationError("partial "+key, err)
		}
		partials[key] = partialNodes

		if err := r.collectPartials(ctx, partialNodes, partials); err != nil {
			return err
		}
	}
	return nil
}

// GenerateCSS derives CSS for a theme according to the renderer's variant.
func (r *Renderer) GenerateCSS(ctx context.Context, t theme.Theme) (string, error) {
	themeCSS := r.GenerateThemeCSS(t)
	if r.variant != FrameworkAdapted {
		return themeCSS, nil
	}
	frameworkVars, err := r.variables.GenerateCSSVariables(ctx, t)
	if err != nil {
		return "", err
	}
	return frameworkVars + "\n" + themeCSS, nil
}

func sortedKeys(m map[string][]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
