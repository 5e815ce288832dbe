// Package ports defines the collaborator contracts consumed by the theming
// core. Implementations live in infrastructure packages (internal/cache,
// internal/storage) or are supplied by the embedding application.
package ports

import (
	"context"
	"time"
)

// Cache is an optional key/value cache with per-entry TTL. Implementations
// must be safe for concurrent use. A nil Cache is tolerated everywhere: its
// absence simply forces every read to recompute.
type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Has(ctx context.Context, key string) bool
	Delete(ctx context.Context, key string) error
}

// SitePublisher is an optional callback into the hosting platform, invoked
// opportunistically after theme mutations. The core degrades silently when no
// publisher is configured or when a publish call fails.
type SitePublisher interface {
	UpdateSiteTheme(ctx context.Context, siteID string, themeJSON []byte) error
	PublishSiteTheme(ctx context.Context, siteID string, themeJSON []byte) error
}
