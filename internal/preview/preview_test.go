package preview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgesites/themekit/internal/cache"
	"github.com/forgesites/themekit/internal/storage"
	"github.com/forgesites/themekit/internal/theme"
	apperrors "github.com/forgesites/themekit/pkg/errors"
)

type fixture struct {
	service *Service
	themes  *theme.Manager
	store   *storage.Store
	cache   *cache.Memory
	now     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	mem := cache.NewMemory()
	themes := theme.NewManager(store, theme.ManagerOptions{Cache: mem, Clock: clock})
	service := NewService(themes, store, Options{Cache: mem, Clock: clock})
	return &fixture{service: service, themes: themes, store: store, cache: mem, now: &current}
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func TestCreateAndGetPreview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	desc, err := f.service.Create(ctx, "42", theme.Changes{
		Colors: map[string]string{"primary": "#abcdef"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", desc.SiteID)
	assert.Equal(t, "/preview/"+desc.ID, desc.URL)
	assert.Equal(t, desc.CreatedAt.Add(DefaultTTL), desc.ExpiresAt)

	p, err := f.service.Get(ctx, desc.ID)
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", p.Theme.Colors["primary"])
	// Untouched tokens come from the site's current theme.
	assert.Equal(t, "#2ecc71", p.Theme.Colors["secondary"])
}

func TestCreatePreviewDoesNotSaveThemeVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	// Materialize the site theme so the baseline history length is known.
	_, err := f.themes.GetSiteTheme(ctx, "7")
	require.NoError(t, err)

	_, err = f.service.Create(ctx, "7", theme.Changes{
		Colors: map[string]string{"primary": "#111111"},
	})
	require.NoError(t, err)

	history, err := f.themes.GetThemeHistory(ctx, theme.SiteThemeID("7"))
	require.NoError(t, err)
	assert.Len(t, history, 1)

	current, err := f.themes.GetSiteTheme(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "#3498db", current.Colors["primary"])
}

func TestCreatePreviewRequiresSiteID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.service.Create(context.Background(), "", theme.Changes{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetPreviewExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	desc, err := f.service.Create(ctx, "9", theme.Changes{
		Colors: map[string]string{"primary": "#abcdef"},
	})
	require.NoError(t, err)

	f.advance(DefaultTTL - time.Second)
	_, err = f.service.Get(ctx, desc.ID)
	require.NoError(t, err)

	f.advance(2 * time.Second)
	_, err = f.service.Get(ctx, desc.ID)
	assert.True(t, apperrors.IsExpired(err))

	// The expired artifact was removed everywhere, including the store.
	var probe Preview
	err = f.store.ReadDoc(ctx, "previews", desc.ID, &probe)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetPreviewReadsThroughStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	desc, err := f.service.Create(ctx, "5", theme.Changes{
		Colors: map[string]string{"accent": "#00ff00"},
	})
	require.NoError(t, err)

	// Drop the in-process and cache layers so the read must hit the store.
	f.service.mu.Lock()
	delete(f.service.local, desc.ID)
	f.service.mu.Unlock()
	require.NoError(t, f.cache.Delete(ctx, cachePrefix+desc.ID))

	p, err := f.service.Get(ctx, desc.ID)
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", p.Theme.Colors["accent"])

	// The hit repopulated the cache.
	assert.True(t, f.cache.Has(ctx, cachePrefix+desc.ID))
}

func TestApplyPreviewIsSingleUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	desc, err := f.service.Create(ctx, "11", theme.Changes{
		Colors: map[string]string{"primary": "#abcdef"},
	})
	require.NoError(t, err)

	applied, err := f.service.Apply(ctx, desc.ID)
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", applied.Colors["primary"])

	current, err := f.themes.GetSiteTheme(ctx, "11")
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", current.Colors["primary"])

	_, err = f.service.Apply(ctx, desc.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.service.Get(ctx, desc.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestApplyExpiredPreviewFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	desc, err := f.service.Create(ctx, "12", theme.Changes{
		Colors: map[string]string{"primary": "#222222"},
	})
	require.NoError(t, err)

	f.advance(DefaultTTL + time.Minute)
	_, err = f.service.Apply(ctx, desc.ID)
	assert.True(t, apperrors.IsExpired(err))

	current, err := f.themes.GetSiteTheme(ctx, "12")
	require.NoError(t, err)
	assert.Equal(t, "#3498db", current.Colors["primary"])
}

func TestListPreviewsFiltersSiteAndPrunes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	first, err := f.service.Create(ctx, "a", theme.Changes{Name: "One"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, "b", theme.Changes{Name: "Two"})
	require.NoError(t, err)

	f.advance(10 * time.Minute)
	fresh, err := f.service.Create(ctx, "a", theme.Changes{Name: "Three"})
	require.NoError(t, err)

	// The first two previews expire; the fresh one is still live.
	f.advance(DefaultTTL - 5*time.Minute)

	listed, err := f.service.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, fresh.ID, listed[0].ID)

	_, err = f.service.Get(ctx, first.ID)
	assert.Error(t, err)
}

func TestCleanupExpiredPreviews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	for range 3 {
		_, err := f.service.Create(ctx, "s", theme.Changes{})
		require.NoError(t, err)
	}
	f.advance(20 * time.Minute)
	survivor, err := f.service.Create(ctx, "s", theme.Changes{})
	require.NoError(t, err)

	f.advance(15 * time.Minute)
	pruned, err := f.service.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pruned)

	_, err = f.service.Get(ctx, survivor.ID)
	assert.NoError(t, err)

	pruned, err = f.service.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestDeletePreview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	desc, err := f.service.Create(ctx, "d", theme.Changes{})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, desc.ID))
	_, err = f.service.Get(ctx, desc.ID)
	assert.True(t, apperrors.IsNotFound(err))

	// Deleting again is not an error.
	assert.NoError(t, f.service.Delete(ctx, desc.ID))
}
