package stan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/store"
)

// fakeFetcher serves canned markup per URL, or an error.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	urls  []string
}

func (f *fakeFetcher) HTML(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	return f.pages[url], nil
}

func (f *fakeFetcher) Text(ctx context.Context, url string) (string, error) {
	return f.HTML(ctx, url)
}

func (f *fakeFetcher) Close() error { return nil }

func newEnrichTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func insertIdentityWithSlug(t *testing.T, st *store.SQLiteStore, slug string) *model.CreatorIdentity {
	t.Helper()
	ident, err := st.InsertIdentity(context.Background(), &slug, nil)
	require.NoError(t, err)
	return ident
}

func TestEnrichBatch_PersistsProfile(t *testing.T) {
	st := newEnrichTestStore(t)
	ctx := context.Background()
	ident := insertIdentityWithSlug(t, st, "mayalifts")

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://stan.store/mayalifts": storefrontFixture,
	}}
	enricher := NewEnricher(st, fetcher)

	resp, err := enricher.EnrichBatch(ctx, store.StanSelector{})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Enriched)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, OutcomeEnriched, resp.Items[0].Outcome)
	assert.Equal(t, 4, resp.Items[0].Offers)

	profile, err := st.GetStanProfile(ctx, ident.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Maya Lifts", profile.ProfileName)
	assert.Len(t, profile.OfferCards, 4)

	got, err := st.GetIdentity(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, model.IdentityStatusEnriched, got.Status)
}

func TestEnrichBatch_OneFailureDoesNotAbort(t *testing.T) {
	st := newEnrichTestStore(t)
	ctx := context.Background()
	insertIdentityWithSlug(t, st, "broken")
	okIdent := insertIdentityWithSlug(t, st, "mayalifts")

	fetcher := &fakeFetcher{
		pages: map[string]string{"https://stan.store/mayalifts": storefrontFixture},
		errs:  map[string]error{"https://stan.store/broken": eris.New("navigation timeout")},
	}
	enricher := NewEnricher(st, fetcher)

	resp, err := enricher.EnrichBatch(ctx, store.StanSelector{})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Enriched)
	assert.Equal(t, 1, resp.Failed)

	profile, err := st.GetStanProfile(ctx, okIdent.ID)
	require.NoError(t, err)
	assert.NotNil(t, profile)
}

func TestEnrichBatch_SkipsEnrichedUnlessForce(t *testing.T) {
	st := newEnrichTestStore(t)
	ctx := context.Background()
	insertIdentityWithSlug(t, st, "mayalifts")

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://stan.store/mayalifts": storefrontFixture,
	}}
	enricher := NewEnricher(st, fetcher)

	_, err := enricher.EnrichBatch(ctx, store.StanSelector{})
	require.NoError(t, err)

	// Without force the second pass selects nothing.
	resp, err := enricher.EnrichBatch(ctx, store.StanSelector{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	resp, err = enricher.EnrichBatch(ctx, store.StanSelector{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Enriched)
	assert.Len(t, fetcher.urls, 2)
}
