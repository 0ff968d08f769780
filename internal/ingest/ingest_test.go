package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return NewService(st), st
}

func TestIngest_GeneratesRunAndNormalizes(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Ingest(context.Background(), Request{
		Query: `site:instagram.com "stan.store"`,
		Results: []crawl.Result{
			{
				Position: 1,
				Title:    "Maya Lifts (@mayalifts) · Instagram",
				Snippet:  "12.3K followers · stan.store/mayalifts",
				URL:      "https://www.instagram.com/mayalifts/?igsh=track",
			},
			{
				Position: 2,
				Title:    "Coach Dan",
				Snippet:  "Daily workouts",
				URL:      "https://www.tiktok.com/@coachdan",
			},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.DiscoveryRunID)
	assert.Equal(t, int64(2), resp.Inserted)
	assert.Zero(t, resp.Skipped)
	assert.Equal(t, 2, resp.Report.TotalAccounts)
	assert.Equal(t, 1, resp.Report.WithStanSlug)
	assert.InDelta(t, 50.0, resp.Report.StanCoveragePct, 1e-9)
}

func TestIngest_UpsertSameURLKeepsLatestSnippet(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, Request{
		Query:   "q",
		Results: []crawl.Result{{Position: 5, Title: "Maya", Snippet: "12.3K followers", URL: "https://instagram.com/mayalifts"}},
	})
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, Request{
		DiscoveryRunID: first.DiscoveryRunID,
		Query:          "q",
		Results:        []crawl.Result{{Position: 2, Title: "Maya", Snippet: "14.1K followers", URL: "https://instagram.com/mayalifts"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Report.TotalAccounts)

	rows, err := st.ListUnlinkedRawAccounts(ctx, first.DiscoveryRunID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "14.1K followers", rows[0].Snippet)
	assert.Equal(t, 2, rows[0].Position)
	require.NotNil(t, rows[0].FollowerEstimate)
	assert.Equal(t, int64(14100), *rows[0].FollowerEstimate)
}

func TestIngest_SkipsUnparseableURLs(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Ingest(context.Background(), Request{
		Query: "q",
		Results: []crawl.Result{
			{Title: "bad", URL: "::not a url::"},
			{Title: "media", URL: "https://instagram.com/reel/video.mp4"},
			{Title: "ok", URL: "https://instagram.com/mayalifts"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Skipped)
	assert.Equal(t, int64(1), resp.Inserted)
}

func TestIngest_UnknownPlatformBucket(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Ingest(context.Background(), Request{
		Query:   "q",
		Results: []crawl.Result{{Title: "Blog", Snippet: "stan.store/someone", URL: "https://example.com/about"}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Report.ByPlatform, 1)
	assert.Equal(t, model.PlatformUnknown, resp.Report.ByPlatform[0].Platform)
	assert.Equal(t, 1, resp.Report.WithStanSlug)
}

func TestIngest_RowQueryOverridesRequestQuery(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Ingest(ctx, Request{
		Query: "default query",
		Results: []crawl.Result{
			{Query: "agent query", Title: "Maya", URL: "https://instagram.com/mayalifts"},
			{Title: "Dan", URL: "https://tiktok.com/@coachdan"},
		},
	})
	require.NoError(t, err)

	rows, err := st.ListUnlinkedRawAccounts(ctx, resp.DiscoveryRunID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	queries := map[string]bool{}
	for _, r := range rows {
		queries[r.Query] = true
	}
	assert.True(t, queries["agent query"])
	assert.True(t, queries["default query"])
}
