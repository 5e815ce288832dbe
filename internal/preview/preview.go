// Package preview implements short-lived theme previews. A preview merges a
// change set onto a site's current theme without saving it, lives until its
// TTL elapses, and may be applied at most once to become a real theme
// version.
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgesites/themekit/internal/logger"
	"github.com/forgesites/themekit/internal/ports"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

const (
	// DefaultTTL bounds a preview's lifetime when the caller does not choose
	// one.
	DefaultTTL = 30 * time.Minute

	docKind     = "previews"
	cachePrefix = "preview_"
)

// CSSGenerator derives the full CSS artifact for a merged preview theme. The
// template renderer satisfies this.
type CSSGenerator interface {
	GenerateCSS(ctx context.Context, t theme.Theme) (string, error)
}

// Preview is the full durable artifact: the merged theme, the change set
// that produced it, and the derived CSS.
type Preview struct {
	ID           string            `json:"id"`
	SiteID       string            `json:"siteId"`
	Theme        theme.Theme       `json:"theme"`
	CSSVariables string            `json:"cssVariables,omitempty"`
	Changes      theme.Changes     `json:"changes"`
	CreatedAt    time.Time         `json:"createdAt"`
	ExpiresAt    time.Time         `json:"expiresAt"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Descriptor is the minimal public projection returned on create; the full
// theme payload stays server-side.
type Descriptor struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	URL       string    `json:"url"`
}

// Options configures a Service.
type Options struct {
	Cache  ports.Cache
	CSS    CSSGenerator
	Logger *logger.Logger
	Clock  func() time.Time
	TTL    time.Duration
}

// Service owns the preview lifecycle. Reads cascade through an in-process
// map, the shared cache, and the durable store, each hit repopulating the
// layers above it.
type Service struct {
	themes *theme.Manager
	store  *storage.Store
	cache  ports.Cache
	css    CSSGenerator
	log    *logger.Logger
	now    func() time.Time
	ttl    time.Duration

	mu    sync.RWMutex
	local map[string]Preview
}

// NewService creates a preview service on top of a theme manager and store.
func NewService(themes *theme.Manager, store *storage.Store, opts Options) *Service {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		themes: themes,
		store:  store,
		cache:  opts.Cache,
		css:    opts.CSS,
		log:    opts.Logger.Component("preview"),
		now:    now,
		ttl:    ttl,
		local:  map[string]Preview{},
	}
}

// Create merges changes onto the site's current theme without saving a new
// version, derives CSS, and persists the preview to the store and cache.
func (s *Service) Create(ctx context.Context, siteID string, changes theme.Changes) (Descriptor, error) {
	if siteID == "" {
		return Descriptor{}, apperrors.NewValidationError("siteId", "site id is required")
	}
	base, err := s.themes.GetSiteTheme(ctx, siteID)
	if err != nil {
		return Descriptor{}, err
	}
	now := s.now()
	merged := theme.Customize(base, changes, now)

	p := Preview{
		ID:        "preview_" + uuid.NewString(),
		SiteID:    siteID,
		Theme:     merged,
		Changes:   changes,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Metadata:  map[string]string{"baseThemeId": base.ID},
	}
	if s.css != nil {
		css, err := s.css.GenerateCSS(ctx, merged)
		if err != nil {
			s.log.WithFields(map[string]any{"preview_id": p.ID}).
				Warn("failed to derive preview css")
		} else {
			p.CSSVariables = css
		}
	}

	if err := s.store.WriteDoc(ctx, docKind, p.ID, p); err != nil {
		return Descriptor{}, err
	}
	s.put(ctx, p)

	s.log.WithFields(map[string]any{
		"preview_id": p.ID,
		"site_id":    siteID,
		"expires_at": p.ExpiresAt,
	}).Info("preview created")
	return descriptor(p), nil
}

// Get loads a preview through the read cascade. An entry past its expiry is
// deleted from every layer and surfaces as an ExpiredError.
func (s *Service) Get(ctx context.Context, id string) (Preview, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return Preview{}, err
	}
	if !s.now().Before(p.ExpiresAt) {
		s.discard(ctx, id)
		return Preview{}, apperrors.NewExpiredError("preview", id, p.ExpiresAt)
	}
	return p, nil
}

// Apply turns a live preview into a real theme version via the theme
// manager, then deletes the preview. A preview applies at most once; a
// second call fails with NotFound.
func (s *Service) Apply(ctx context.Context, id string) (theme.Theme, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return theme.Theme{}, err
	}
	applied, err := s.themes.CustomizeSiteTheme(ctx, p.SiteID, p.Changes)
	if err != nil {
		return theme.Theme{}, err
	}
	s.discard(ctx, id)
	s.log.WithFields(map[string]any{
		"preview_id": id,
		"site_id":    p.SiteID,
		"theme_id":   applied.ID,
	}).Info("preview applied")
	return applied, nil
}

// Delete removes a preview from every layer. Deleting a missing preview is
// not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.discard(ctx, id)
	return ctx.Err()
}

// List returns descriptors for a site's live previews, pruning expired
// entries it encounters.
func (s *Service) List(ctx context.Context, siteID string) ([]Descriptor, error) {
	ids, err := s.store.ListDocs(ctx, docKind)
	if err != nil {
		return nil, err
	}
	var out []Descriptor
	for _, id := range ids {
		var p Preview
		if err := s.store.ReadDoc(ctx, docKind, id, &p); err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if !s.now().Before(p.ExpiresAt) {
			s.discard(ctx, id)
			continue
		}
		if p.SiteID == siteID {
			out = append(out, descriptor(p))
		}
	}
	return out, nil
}

// CleanupExpired removes every expired preview from the durable store and
// reports how many were pruned. Correctness never depends on this running;
// it only reclaims storage.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	ids, err := s.store.ListDocs(ctx, docKind)
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, id := range ids {
		var p Preview
		if err := s.store.ReadDoc(ctx, docKind, id, &p); err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return pruned, err
		}
		if !s.now().Before(p.ExpiresAt) {
			s.discard(ctx, id)
			pruned++
		}
	}
	if pruned > 0 {
		s.log.WithFields(map[string]any{"pruned": pruned}).Info("expired previews removed")
	}
	return pruned, nil
}

// load walks local map, cache, then store, repopulating upper layers on the
// way back.
func (s *Service) load(ctx context.Context, id string) (Preview, error) {
	s.mu.RLock()
	p, ok := s.local[id]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, cachePrefix+id); ok {
			if p, ok := cached.(Preview); ok {
				s.mu.Lock()
				s.local[id] = p
				s.mu.Unlock()
				return p, nil
			}
		}
	}

	if err := s.store.ReadDoc(ctx, docKind, id, &p); err != nil {
		return Preview{}, err
	}
	s.put(ctx, p)
	return p, nil
}

func (s *Service) put(ctx context.Context, p Preview) {
	s.mu.Lock()
	s.local[p.ID] = p
	s.mu.Unlock()
	if s.cache != nil {
		ttl := p.ExpiresAt.Sub(s.now())
		if ttl > 0 {
			_ = s.cache.Set(ctx, cachePrefix+p.ID, p, ttl)
		}
	}
}

func (s *Service) discard(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.local, id)
	s.mu.Unlock()
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cachePrefix+id)
	}
	if err := s.store.DeleteDoc(ctx, docKind, id); err != nil {
		s.log.WithFields(map[string]any{"preview_id": id}).
			Warn("failed to remove preview document")
	}
}

func descriptor(p Preview) Descriptor {
	return Descriptor{
		ID:        p.ID,
		SiteID:    p.SiteID,
		CreatedAt: p.CreatedAt,
		ExpiresAt: p.ExpiresAt,
		URL:       "/preview/" + p.ID,
	}
}
