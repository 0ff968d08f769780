package social

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func int64ptr(v int64) *int64 { return &v }

// seedLinkedAccounts inserts raw accounts and links them all to a fresh
// identity, returning the identity.
func seedLinkedAccounts(t *testing.T, st *store.SQLiteStore, slug string, accounts []model.RawAccount) *model.CreatorIdentity {
	t.Helper()
	ctx := context.Background()
	const runID = "run-social"
	require.NoError(t, st.EnsureDiscoveryRun(ctx, runID))

	for i := range accounts {
		accounts[i].DiscoveryRunID = runID
		if accounts[i].Query == "" {
			accounts[i].Query = "creators"
		}
	}
	_, err := st.UpsertRawAccounts(ctx, accounts)
	require.NoError(t, err)

	ident, err := st.InsertIdentity(ctx, &slug, nil)
	require.NoError(t, err)

	rows, err := st.ListUnlinkedRawAccounts(ctx, runID, 100)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, st.LinkAccount(ctx, model.IdentityAccountLink{
			IdentityID:   ident.ID,
			RawAccountID: row.ID,
			Platform:     row.Platform,
			Handle:       row.Handle,
			ProfileURL:   row.ProfileURL,
			Reason:       model.LinkReasonStanSlug,
		}))
	}
	return ident
}

func TestEnrichBatch_SynthesizesSignals(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ident := seedLinkedAccounts(t, st, "mayalifts", []model.RawAccount{
		{
			SourceURL:        "https://www.instagram.com/mayalifts",
			ProfileURL:       "https://instagram.com/mayalifts",
			Platform:         model.PlatformInstagram,
			Handle:           "mayalifts",
			FollowerEstimate: int64ptr(10000),
		},
		{
			SourceURL:        "https://www.instagram.com/mayalifts?hl=en",
			ProfileURL:       "https://instagram.com/mayalifts",
			Platform:         model.PlatformInstagram,
			Handle:           "mayalifts",
			FollowerEstimate: int64ptr(12000),
		},
	})
	require.NoError(t, st.UpsertStanProfile(ctx, model.StanProfile{
		IdentityID:      ident.ID,
		ProfileName:     "Maya Lifts",
		OutboundSocials: []string{"https://www.tiktok.com/@mayalifts"},
	}))

	resp, err := NewEnricher(st).EnrichBatch(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	require.Len(t, resp.Items, 1)
	require.Len(t, resp.Items[0].Signals, 2)

	ig := resp.Items[0].Signals[0]
	assert.Equal(t, model.PlatformInstagram, ig.Platform)
	assert.Equal(t, int64(12000), ig.FollowersEstimate)
	assert.Equal(t, 2, ig.SampleSize)
	assert.Equal(t, model.DataQualityObserved, ig.DataQuality)
	// 12000 followers x 0.30 prior view rate x 1.06 corroboration multiplier.
	assert.InDelta(t, 3816, float64(ig.AvgViewsEstimate), 1)
	assert.InDelta(t, 0.032, ig.EngagementEstimate, 1e-9)
	assert.InDelta(t, 0.68, ig.Confidence, 1e-9)

	tk := resp.Items[0].Signals[1]
	assert.Equal(t, model.PlatformTikTok, tk.Platform)
	assert.Equal(t, int64(0), tk.FollowersEstimate)
	assert.Equal(t, int64(0), tk.AvgViewsEstimate)
	assert.Equal(t, model.DataQualitySparse, tk.DataQuality)
	assert.InDelta(t, 0.051, tk.EngagementEstimate, 1e-9)
	assert.InDelta(t, 0.22, tk.Confidence, 1e-9)

	persisted, err := st.ListSocialSignals(ctx, ident.ID)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)

	got, err := st.GetIdentity(ctx, ident.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EngagementEstimate)
	// Dominated by the high-follower instagram signal.
	assert.InDelta(t, 0.032, *got.EngagementEstimate, 0.001)
}

func TestEnrichBatch_MinFollowerFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ident := seedLinkedAccounts(t, st, "smallfry", []model.RawAccount{
		{
			SourceURL:        "https://www.instagram.com/smallfry",
			Platform:         model.PlatformInstagram,
			Handle:           "smallfry",
			FollowerEstimate: int64ptr(500),
		},
	})

	resp, err := NewEnricher(st).EnrichBatch(ctx, Request{MinFollowerEstimate: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Skipped)
	assert.Zero(t, resp.Updated)

	persisted, err := st.ListSocialSignals(ctx, ident.ID)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestEnrichBatch_DryRunDoesNotPersist(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ident := seedLinkedAccounts(t, st, "mayalifts", []model.RawAccount{
		{
			SourceURL:        "https://www.instagram.com/mayalifts",
			Platform:         model.PlatformInstagram,
			Handle:           "mayalifts",
			FollowerEstimate: int64ptr(10000),
		},
	})

	resp, err := NewEnricher(st).EnrichBatch(ctx, Request{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
	require.Len(t, resp.Items, 1)
	assert.NotEmpty(t, resp.Items[0].Signals)

	persisted, err := st.ListSocialSignals(ctx, ident.ID)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	got, err := st.GetIdentity(ctx, ident.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EngagementEstimate)
}

func TestEnrichBatch_SkipsEnrichedUnlessForce(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seedLinkedAccounts(t, st, "mayalifts", []model.RawAccount{
		{
			SourceURL:        "https://www.instagram.com/mayalifts",
			Platform:         model.PlatformInstagram,
			Handle:           "mayalifts",
			FollowerEstimate: int64ptr(10000),
		},
	})
	enricher := NewEnricher(st)

	resp, err := enricher.EnrichBatch(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)

	resp, err = enricher.EnrichBatch(ctx, Request{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	resp, err = enricher.EnrichBatch(ctx, Request{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updated)
}

func TestEnrichBatch_NoEvidenceIsSkipped(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	slug := "ghost"
	_, err := st.InsertIdentity(ctx, &slug, nil)
	require.NoError(t, err)

	resp, err := NewEnricher(st).EnrichBatch(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Skipped)
}

func TestSynthesize_ClampsEngagementAndConfidence(t *testing.T) {
	sig := synthesize(1, &platformEvidence{
		platform:     model.PlatformTikTok,
		maxFollowers: 250000,
		rows:         6,
		outbound:     true,
	})
	// prior 0.045 + 0.002*5 + 0.004 outbound = 0.059, well under the ceiling.
	assert.InDelta(t, 0.059, sig.EngagementEstimate, 1e-9)
	// All increments fire: 0.1+0.34+0.14+0.06+0.12+0.1 = 0.86.
	assert.InDelta(t, 0.86, sig.Confidence, 1e-9)
	assert.Equal(t, 7, sig.SampleSize)
	// Multiplier caps at 1.3 despite seven corroborating signals.
	assert.InDelta(t, 250000*0.55*1.3, float64(sig.AvgViewsEstimate), 1)
}

func TestSynthesize_UnknownPlatformUsesDefaultPrior(t *testing.T) {
	sig := synthesize(1, &platformEvidence{
		platform:     model.Platform("threads"),
		maxFollowers: 1000,
		rows:         1,
	})
	assert.InDelta(t, 0.022, sig.EngagementEstimate, 1e-9)
	// No platform-known credit: 0.34 followers + 0.1 avg views.
	assert.InDelta(t, 0.44, sig.Confidence, 1e-9)
}

func TestOverallEngagement_WeightsByConfidenceAndFollowers(t *testing.T) {
	signals := []model.SocialSignal{
		{FollowersEstimate: 100000, EngagementEstimate: 0.03, Confidence: 0.8},
		{FollowersEstimate: 100, EngagementEstimate: 0.19, Confidence: 0.3},
	}
	got := OverallEngagement(signals)
	assert.Greater(t, got, 0.03)
	assert.Less(t, got, 0.031)

	assert.Zero(t, OverallEngagement(nil))
}
