// Package component loads per-component config/style/script assets, resolves
// effective options, renders components, and bundles assets for a site.
package component

import (
	"context"
	"encoding/json"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/forgesites/themekit/internal/logger"
	"github.com/forgesites/themekit/internal/ports"
	"github.com/forgesites/themekit/internal/render"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

const assetCacheTTL = 30 * time.Minute

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Option declares one configurable component option with its default value.
type Option struct {
	ID          string `json:"id" validate:"required"`
	Type        string `json:"type"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Config is the required per-component configuration document.
type Config struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Options     []Option `json:"options,omitempty" validate:"dive"`
}

// RenderResult carries everything produced by rendering one component.
type RenderResult struct {
	HTML   template.HTML
	CSS    string
	JS     string
	Config Config
}

// BundleRequest identifies one component to include in a site bundle.
type BundleRequest struct {
	ID       string
	Category string
}

// Bundle is the concatenated asset output for a site.
type Bundle struct {
	SiteID      string
	CSS         string
	JS          string
	Included    []string
	Skipped     []string
	GeneratedAt time.Time
}

// Manager owns component asset loading and bundling.
type Manager struct {
	store    *storage.Store
	cache    ports.Cache
	renderer *render.Renderer
	log      *logger.Logger
	now      func() time.Time
}

// ManagerOptions configures optional collaborators.
type ManagerOptions struct {
	Cache  ports.Cache
	Logger *logger.Logger
	Clock  func() time.Time
}

// NewManager creates a component manager.
func NewManager(store *storage.Store, renderer *render.Renderer, opts ManagerOptions) *Manager {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:    store,
		cache:    opts.Cache,
		renderer: renderer,
		log:      opts.Logger.Component("components"),
		now:      now,
	}
}

// LoadConfig loads and validates a component's config.json. Absence or a
// malformed document is fatal for that component.
func (m *Manager) LoadConfig(ctx context.Context, id, category string) (Config, error) {
	key := "component_config_" + category + "_" + id
	if m.cache != nil {
		if cached, ok := m.cache.Get(ctx, key); ok {
			if cfg, ok := cached.(Config); ok {
				return cfg, nil
			}
		}
	}

	raw, err := m.store.ReadComponentAsset(ctx, category, id, "config.json")
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return Config{}, apperrors.WrapValidationError("config.json", err)
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		return Config{}, apperrors.WrapValidationError("config.json", err)
	}

	if m.cache != nil {
		_ = m.cache.Set(ctx, key, cfg, assetCacheTTL)
	}
	return cfg, nil
}

// LoadStyles returns a component's stylesheet. A missing or unreadable file
// degrades to an empty string with a logged warning.
func (m *Manager) LoadStyles(ctx context.Context, id, category string) string {
	return m.loadOptionalAsset(ctx, id, category, "style.css")
}

// LoadScript returns a component's script. A missing or unreadable file
// degrades to an empty string with a logged warning.
func (m *Manager) LoadScript(ctx context.Context, id, category string) string {
	return m.loadOptionalAsset(ctx, id, category, "script.js")
}

func (m *Manager) loadOptionalAsset(ctx context.Context, id, category, filename string) string {
	key := "component_" + filename + "_" + category + "_" + id
	if m.cache != nil {
		if cached, ok := m.cache.Get(ctx, key); ok {
			if text, ok := cached.(string); ok {
				return text
			}
		}
	}

	text, err := m.store.ReadComponentAsset(ctx, category, id, filename)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			m.log.WithFields(map[string]any{"component": category + "/" + id, "asset": filename}).Error(err, "optional asset load failed")
		}
		text = ""
	}
	if m.cache != nil {
		_ = m.cache.Set(ctx, key, text, assetCacheTTL)
	}
	return text
}

// EffectiveOptions resolves a component's option values: each declared
// option's default, shallow-overridden by any matching key in custom.
func EffectiveOptions(cfg Config, custom map[string]any) map[string]any {
	effective := make(map[string]any, len(cfg.Options))
	for _, opt := range cfg.Options {
		effective[opt.ID] = opt.Default
	}
	for key, value := range custom {
		if _, declared := effective[key]; declared {
			effective[key] = value
		}
	}
	return effective
}

// Render renders one component against data and custom option overrides.
func (m *Manager) Render(ctx context.Context, id, category string, data map[string]any, customOptions map[string]any) (*RenderResult, error) {
	cfg, err := m.LoadConfig(ctx, id, category)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["options"] = EffectiveOptions(cfg, customOptions)

	source, err := m.renderer.LoadComponent(ctx, id, category)
	if err != nil {
		return nil, err
	}
	html, err := m.renderer.RenderSource(ctx, source, payload)
	if err != nil {
		return nil, err
	}

	return &RenderResult{
		HTML:   template.HTML(html),
		CSS:    m.LoadStyles(ctx, id, category),
		JS:     m.LoadScript(ctx, id, category),
		Config: cfg,
	}, nil
}

type bundleEntry struct {
	css string
	js  string
	ok  bool
}

// CreateBundle concatenates each requested component's style and script in
// list order, prepending theme-derived CSS when a theme is supplied. Asset
// loads fan out concurrently; a component whose config fails to load is
// skipped with a warning rather than aborting the bundle.
func (m *Manager) CreateBundle(ctx context.Context, siteID string, requests []BundleRequest, themeSettings *theme.Theme) (*Bundle, error) {
	entries := make([]bundleEntry, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		g.Go(func() error {
			if _, err := m.LoadConfig(gctx, req.ID, req.Category); err != nil {
				m.log.WithFields(map[string]any{"component": req.Category + "/" + req.ID}).Error(err, "skipping component in bundle")
				return nil
			}
			entries[i] = bundleEntry{
				css: m.LoadStyles(gctx, req.ID, req.Category),
				js:  m.LoadScript(gctx, req.ID, req.Category),
				ok:  true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bundle := &Bundle{SiteID: siteID, GeneratedAt: m.now()}

	var css, js strings.Builder
	if themeSettings != nil {
		css.WriteString(m.renderer.GenerateThemeCSS(*themeSettings))
		css.WriteString("\n")
	}
	for i, entry := range entries {
		name := requests[i].Category + "/" + requests[i].ID
		if !entry.ok {
			bundle.Skipped = append(bundle.Skipped, name)
			continue
		}
		bundle.Included = append(bundle.Included, name)
		if entry.css != "" {
			css.WriteString(entry.css)
			css.WriteString("\n")
		}
		if entry.js != "" {
			js.WriteString(entry.js)
			js.WriteString("\n")
		}
	}

	bundle.CSS = css.String()
	bundle.JS = js.String()
	return bundle, nil
}
