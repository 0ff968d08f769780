package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/identity"
	"github.com/reachwell/creator-scout/internal/ingest"
	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/signals"
	"github.com/reachwell/creator-scout/internal/social"
	"github.com/reachwell/creator-scout/internal/store"
)

func newTestServer(t *testing.T, crawlFn CrawlFunc) (*Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	srv := New(Deps{
		Store:     st,
		Crawl:     crawlFn,
		Ingest:    ingest.NewService(st),
		Resolver:  identity.NewResolver(st),
		Social:    social.NewEnricher(st),
		Extractor: signals.NewExtractor(st),
	})
	return srv, st
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleIngestAndStatus(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/ingest", ingest.Request{
		DiscoveryRunID: "run-http",
		Query:          "fitness creators",
		Results: []crawl.Result{
			{
				AgentID:  "instagram-stan",
				Platform: model.PlatformInstagram,
				Query:    "fitness creators",
				Position: 1,
				Title:    "Maya Lifts (@mayalifts) • Instagram",
				Snippet:  "stan.store/mayalifts — 12.3K followers",
				URL:      "https://www.instagram.com/mayalifts/",
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ingest.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-http", resp.DiscoveryRunID)
	assert.Equal(t, int64(1), resp.Inserted)

	rec = doJSON(t, srv, http.MethodGet, "/api/status/run-http", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report ingest.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.TotalAccounts)
	assert.Equal(t, 1, report.WithStanSlug)
}

func TestHandleIngest_RequiresResults(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/ingest", ingest.Request{Query: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIngest_RejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolve(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/ingest", ingest.Request{
		DiscoveryRunID: "run-resolve",
		Query:          "fitness creators",
		Results: []crawl.Result{
			{
				Platform: model.PlatformInstagram,
				Title:    "Maya Lifts",
				Snippet:  "stan.store/mayalifts",
				URL:      "https://www.instagram.com/mayalifts/",
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/resolve", map[string]any{
		"discovery_run_id": "run-resolve",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp identity.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.Processed)
	assert.Equal(t, 1, resp.Stats.Created)
}

func TestHandleCrawl_NotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/crawl", CrawlRequest{})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleCrawl_DelegatesToRunner(t *testing.T) {
	var gotAgents []string
	srv, _ := newTestServer(t, func(_ context.Context, req CrawlRequest) (*crawl.Report, error) {
		gotAgents = req.AgentIDs
		return &crawl.Report{OK: true}, nil
	})

	rec := doJSON(t, srv, http.MethodPost, "/api/crawl", CrawlRequest{
		AgentIDs: []string{"instagram-stan"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"instagram-stan"}, gotAgents)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestHandleEnrichSocial_DryRun(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	slug := "mayalifts"
	ident, err := st.InsertIdentity(ctx, &slug, nil)
	require.NoError(t, err)
	require.NoError(t, st.UpsertStanProfile(ctx, model.StanProfile{
		IdentityID:      ident.ID,
		OutboundSocials: []string{"https://www.tiktok.com/@mayalifts"},
	}))

	rec := doJSON(t, srv, http.MethodPost, "/api/enrich/social", map[string]any{
		"dry_run": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp social.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Updated)

	persisted, err := st.ListSocialSignals(ctx, ident.ID)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestHandleScore(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	slug := "mayalifts"
	ident, err := st.InsertIdentity(ctx, &slug, nil)
	require.NoError(t, err)
	require.NoError(t, st.UpsertStanProfile(ctx, model.StanProfile{
		IdentityID:   ident.ID,
		ProfileName:  "Maya Lifts",
		Bio:          "Strength coach sharing gym workouts and training programs.",
		ProductTypes: []string{"coaching"},
		Confidence:   0.8,
	}))

	rec := doJSON(t, srv, http.MethodPost, "/api/score", map[string]any{
		"creator_identity_id": ident.ID,
		"brand": model.BrandSpec{
			Name:     "LiftFuel",
			Intent:   map[model.BrandIntent]float64{model.IntentProductSale: 1},
			Category: "fitness",
			Topics:   []string{"gym routines"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Features model.FeatureSet         `json:"features"`
		Score    model.CompatibilityScore `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fitness", resp.Features.Niche)
	assert.GreaterOrEqual(t, resp.Score.Total, 0.0)
	assert.LessOrEqual(t, resp.Score.Total, 1.0)
}

func TestHandleScore_MissingIdentity(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/score", map[string]any{
		"creator_identity_id": 999,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleScore_RequiresIdentity(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/score", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
