package theme

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/forgesites/themekit/internal/logger"
	"github.com/forgesites/themekit/internal/ports"
	"github.com/forgesites/themekit/internal/storage"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

const (
	// maxHistoryEntries bounds the per-theme version history. The oldest
	// snapshot is evicted FIFO once the bound is reached.
	maxHistoryEntries = 10

	// DefaultPreviewTTL is how long a generated theme preview stays readable.
	DefaultPreviewTTL = 30 * time.Minute

	// cacheTTL applies to cached theme documents and derived CSS.
	cacheTTL = 30 * time.Minute

	siteThemePrefix = "site_"

	maxParentDepth = 8
)

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

// validateColors rejects color overrides that are not hex colors. Empty maps
// pass; absent keys are not the manager's concern.
func validateColors(colors map[string]string) error {
	v := validatorInstance()
	for key, value := range colors {
		if err := v.Var(value, "hexcolor"); err != nil {
			return apperrors.NewValidationError("colors."+key, "must be a hex color")
		}
	}
	return nil
}

// History is the bounded, append-only version record kept per theme id. The
// counter keeps increasing monotonically even after old entries are evicted.
type History struct {
	Counter int     `json:"counter"`
	Entries []Theme `json:"entries"`
}

// CSSGenerator derives CSS text from a theme. The template renderer satisfies
// this; the manager uses it to refresh derived CSS on every mutation.
type CSSGenerator interface {
	GenerateThemeCSS(t Theme) string
}

// ThemePreview is the lightweight cache-only projection produced by
// GenerateThemePreview. It never touches the version history.
type ThemePreview struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	Theme     Theme     `json:"theme"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ManagerOptions configures optional collaborators. Every field may be left
// zero: the manager degrades to store-only reads, no publishing, and no
// derived CSS.
type ManagerOptions struct {
	Cache      ports.Cache
	Publisher  ports.SitePublisher
	CSS        CSSGenerator
	Logger     *logger.Logger
	Clock      func() time.Time
	PreviewTTL time.Duration
}

// Manager owns theme CRUD, the bounded version history, revert, and the
// site-theme convenience accessors.
type Manager struct {
	store      *storage.Store
	cache      ports.Cache
	publisher  ports.SitePublisher
	css        CSSGenerator
	log        *logger.Logger
	now        func() time.Time
	previewTTL time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a theme manager backed by the given store.
func NewManager(store *storage.Store, opts ManagerOptions) *Manager {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	previewTTL := opts.PreviewTTL
	if previewTTL <= 0 {
		previewTTL = DefaultPreviewTTL
	}
	return &Manager{
		store:      store,
		cache:      opts.Cache,
		publisher:  opts.Publisher,
		css:        opts.CSS,
		log:        opts.Logger.Component("theme-manager"),
		now:        now,
		previewTTL: previewTTL,
		locks:      map[string]*sync.Mutex{},
	}
}

// SiteThemeID returns the theme id reserved for a site.
func SiteThemeID(siteID string) string {
	return siteThemePrefix + siteID
}

// GetTheme loads a theme by id, consulting the cache first.
func (m *Manager) GetTheme(ctx context.Context, id string) (Theme, error) {
	if m.cache != nil {
		if cached, ok := m.cache.Get(ctx, themeCacheKey(id)); ok {
			if t, ok := cached.(Theme); ok {
				return Clone(t), nil
			}
		}
	}

	var t Theme
	if err := m.store.ReadDoc(ctx, "themes", id, &t); err != nil {
		return Theme{}, err
	}
	if m.cache != nil {
		_ = m.cache.Set(ctx, themeCacheKey(id), Clone(t), cacheTTL)
	}
	return t, nil
}

// SaveTheme appends a new history entry, writes the theme to the backing
// store and cache, and returns the versioned theme. Every other mutator
// funnels through here. Writes for the same theme id are serialized.
func (m *Manager) SaveTheme(ctx context.Context, t Theme) (Theme, error) {
	if t.ID == "" {
		return Theme{}, apperrors.NewValidationError("id", "is required")
	}

	unlock := m.lockTheme(t.ID)
	defer unlock()

	var hist History
	if err := m.store.ReadDoc(ctx, "themes", t.ID+".history", &hist); err != nil {
		if !apperrors.IsNotFound(err) {
			return Theme{}, err
		}
	}

	now := m.now()
	saved := Clone(t)
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	if saved.Metadata == nil {
		saved.Metadata = map[string]string{}
	}
	hist.Counter++
	saved.Metadata["version"] = strconv.Itoa(hist.Counter)

	hist.Entries = append(hist.Entries, Clone(saved))
	if len(hist.Entries) > maxHistoryEntries {
		hist.Entries = hist.Entries[len(hist.Entries)-maxHistoryEntries:]
	}

	if err := m.store.WriteDoc(ctx, "themes", t.ID+".history", hist); err != nil {
		return Theme{}, err
	}
	if err := m.store.WriteDoc(ctx, "themes", t.ID, saved); err != nil {
		return Theme{}, err
	}
	if m.cache != nil {
		_ = m.cache.Set(ctx, themeCacheKey(t.ID), Clone(saved), cacheTTL)
	}

	m.refreshDerivedCSS(ctx, saved)
	m.notifyPublisher(ctx, saved)

	m.log.WithFields(map[string]any{"themeId": saved.ID, "version": saved.Metadata["version"]}).Debug("theme saved")
	return saved, nil
}

// CreateTheme fills structural defaults from partial input and saves the
// result as version 1.
func (m *Manager) CreateTheme(ctx context.Context, partial Theme) (Theme, error) {
	if partial.Name == "" && partial.ID == "" {
		return Theme{}, apperrors.NewValidationError("name", "is required")
	}
	if err := validateColors(partial.Colors); err != nil {
		return Theme{}, err
	}
	return m.SaveTheme(ctx, New(partial, m.now()))
}

// GetSiteTheme returns the theme for a site, transparently creating a default
// one when the site has none yet. Callers never observe NotFound here.
func (m *Manager) GetSiteTheme(ctx context.Context, siteID string) (Theme, error) {
	id := SiteThemeID(siteID)
	t, err := m.GetTheme(ctx, id)
	if err == nil {
		return t, nil
	}
	if !apperrors.IsNotFound(err) {
		return Theme{}, err
	}

	def := New(Theme{
		ID:       id,
		Name:     "Default Theme",
		Metadata: map[string]string{"siteId": siteID},
	}, m.now())
	m.log.WithFields(map[string]any{"siteId": siteID}).Info("creating default site theme")
	return m.SaveTheme(ctx, def)
}

// CustomizeSiteTheme merges a change set onto the current site theme and
// persists the result as a new version.
func (m *Manager) CustomizeSiteTheme(ctx context.Context, siteID string, changes Changes) (Theme, error) {
	if err := validateColors(changes.Colors); err != nil {
		return Theme{}, err
	}
	base, err := m.GetSiteTheme(ctx, siteID)
	if err != nil {
		return Theme{}, err
	}
	return m.SaveTheme(ctx, Customize(base, changes, m.now()))
}

// ApplyTemplateTheme replaces the site theme's token namespaces wholesale
// with the template's embedded theme. Nothing from the previous site theme is
// merged in; only the site theme id and creation time carry over.
func (m *Manager) ApplyTemplateTheme(ctx context.Context, siteID string, templateTheme Theme, templateID string) (Theme, error) {
	if templateID == "" {
		return Theme{}, apperrors.NewValidationError("templateId", "is required")
	}

	t := Clone(templateTheme)
	t.ID = SiteThemeID(siteID)
	t.Metadata = map[string]string{
		"siteId":     siteID,
		"templateId": templateID,
		"appliedAt":  m.now().Format(time.RFC3339),
	}
	t.CreatedAt = time.Time{}
	if existing, err := m.GetTheme(ctx, t.ID); err == nil {
		t.CreatedAt = existing.CreatedAt
	} else if !apperrors.IsNotFound(err) {
		return Theme{}, err
	}

	return m.SaveTheme(ctx, t)
}

// GetThemeHistory returns a reverse-chronological copy of the bounded
// history, most recent entry first.
func (m *Manager) GetThemeHistory(ctx context.Context, id string) ([]Theme, error) {
	var hist History
	if err := m.store.ReadDoc(ctx, "themes", id+".history", &hist); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("theme", id)
		}
		return nil, err
	}

	out := make([]Theme, 0, len(hist.Entries))
	for i := len(hist.Entries) - 1; i >= 0; i-- {
		out = append(out, Clone(hist.Entries[i]))
	}
	return out, nil
}

// RevertThemeToVersion saves a new current version built from the history
// snapshot tagged with the requested version. Intervening versions stay in
// the history; reverting never truncates.
func (m *Manager) RevertThemeToVersion(ctx context.Context, id, version string) (Theme, error) {
	var hist History
	if err := m.store.ReadDoc(ctx, "themes", id+".history", &hist); err != nil {
		if apperrors.IsNotFound(err) {
			return Theme{}, apperrors.NewNotFoundError("theme", id)
		}
		return Theme{}, err
	}

	var snapshot *Theme
	for i := range hist.Entries {
		if hist.Entries[i].Metadata["version"] == version {
			s := Clone(hist.Entries[i])
			snapshot = &s
			break
		}
	}
	if snapshot == nil {
		return Theme{}, apperrors.NewNotFoundError("theme version", version)
	}

	snapshot.Metadata["revertedFrom"] = version
	snapshot.Metadata["revertedAt"] = m.now().Format(time.RFC3339)
	return m.SaveTheme(ctx, *snapshot)
}

// ListThemes loads every stored theme.
func (m *Manager) ListThemes(ctx context.Context) ([]Theme, error) {
	ids, err := m.store.ListDocs(ctx, "themes")
	if err != nil {
		return nil, err
	}
	themes := make([]Theme, 0, len(ids))
	for _, id := range ids {
		t, err := m.GetTheme(ctx, id)
		if err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, nil
}

// ResolveTheme returns the effective theme with any parent chain merged in,
// child tokens winning over parent tokens at each level.
func (m *Manager) ResolveTheme(ctx context.Context, id string) (Theme, error) {
	t, err := m.GetTheme(ctx, id)
	if err != nil {
		return Theme{}, err
	}

	seen := map[string]bool{t.ID: true}
	for depth := 0; t.ParentTheme != "" && depth < maxParentDepth; depth++ {
		if seen[t.ParentTheme] {
			break
		}
		seen[t.ParentTheme] = true
		parent, err := m.GetTheme(ctx, t.ParentTheme)
		if err != nil {
			if apperrors.IsNotFound(err) {
				break
			}
			return Theme{}, err
		}
		merged := MergeParent(t, parent, t.UpdatedAt)
		merged.ParentTheme = parent.ParentTheme
		t = merged
	}
	t.ParentTheme = ""
	return t, nil
}

// GenerateThemePreview produces a cache-only merged projection of the site
// theme with the given changes applied. The version history is not touched.
func (m *Manager) GenerateThemePreview(ctx context.Context, siteID string, changes Changes) (*ThemePreview, error) {
	if m.cache == nil {
		return nil, apperrors.NewStoreError("write", "cache", errors.New("preview cache not configured"))
	}

	base, err := m.GetSiteTheme(ctx, siteID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	preview := &ThemePreview{
		ID:        uuid.NewString(),
		SiteID:    siteID,
		Theme:     Customize(base, changes, now),
		CreatedAt: now,
		ExpiresAt: now.Add(m.previewTTL),
	}
	if err := m.cache.Set(ctx, themePreviewCacheKey(preview.ID), preview, m.previewTTL); err != nil {
		return nil, err
	}
	return preview, nil
}

// GetThemePreview reads a cache-only projection produced by
// GenerateThemePreview. Expired or unknown previews surface as NotFound.
func (m *Manager) GetThemePreview(ctx context.Context, previewID string) (*ThemePreview, error) {
	if m.cache == nil {
		return nil, apperrors.NewNotFoundError("theme preview", previewID)
	}
	cached, ok := m.cache.Get(ctx, themePreviewCacheKey(previewID))
	if !ok {
		return nil, apperrors.NewNotFoundError("theme preview", previewID)
	}
	preview, ok := cached.(*ThemePreview)
	if !ok {
		return nil, apperrors.NewNotFoundError("theme preview", previewID)
	}
	return preview, nil
}

func (m *Manager) refreshDerivedCSS(ctx context.Context, t Theme) {
	if m.css == nil || m.cache == nil {
		return
	}
	_ = m.cache.Set(ctx, themeCSSCacheKey(t.ID), m.css.GenerateThemeCSS(t), cacheTTL)
}

// notifyPublisher pushes site-theme mutations to the hosting platform when a
// publisher is configured. Failures are logged and swallowed.
func (m *Manager) notifyPublisher(ctx context.Context, t Theme) {
	if m.publisher == nil {
		return
	}
	siteID, ok := siteIDFromThemeID(t.ID)
	if !ok {
		return
	}
	payload, err := json.Marshal(t)
	if err != nil {
		m.log.Error(err, "marshal theme for publisher")
		return
	}
	if err := m.publisher.UpdateSiteTheme(ctx, siteID, payload); err != nil {
		m.log.WithFields(map[string]any{"siteId": siteID}).Error(err, "site theme publish callback failed")
	}
}

func (m *Manager) lockTheme(id string) func() {
	m.mu.Lock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func siteIDFromThemeID(id string) (string, bool) {
	if len(id) <= len(siteThemePrefix) || id[:len(siteThemePrefix)] != siteThemePrefix {
		return "", false
	}
	return id[len(siteThemePrefix):], true
}

func themeCacheKey(id string) string        { return "theme_" + id }
func themeCSSCacheKey(id string) string     { return "theme_css_" + id }
func themePreviewCacheKey(id string) string { return "theme_preview_" + id }
