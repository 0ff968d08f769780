// Package ingest persists normalized crawl results idempotently and reports
// per-run coverage.
package ingest

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/normalize"
	"github.com/reachwell/creator-scout/internal/store"
)

// Service turns raw crawl rows into persisted RawAccounts.
type Service struct {
	store store.Store
}

// NewService creates an ingestion Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Request is one ingestion call. Query is the default query attributed to
// rows that don't carry their own. An empty DiscoveryRunID starts a fresh
// run.
type Request struct {
	DiscoveryRunID string         `json:"discovery_run_id,omitempty"`
	Query          string         `json:"query,omitempty"`
	Results        []crawl.Result `json:"results"`
}

// Report summarizes run coverage after ingestion.
type Report struct {
	TotalAccounts   int                   `json:"total_accounts"`
	WithStanSlug    int                   `json:"with_stan_slug"`
	StanCoveragePct float64               `json:"stan_coverage_pct"`
	ByPlatform      []store.PlatformCount `json:"by_platform"`
}

// Response reports what one ingestion call did.
type Response struct {
	DiscoveryRunID string `json:"discovery_run_id"`
	Inserted       int64  `json:"inserted"`
	Skipped        int    `json:"skipped"`
	Report         Report `json:"report"`
}

// Ingest normalizes and upserts each result keyed on (run, query, source
// URL). Rows whose URL cannot be parsed are skipped, not errors.
func (s *Service) Ingest(ctx context.Context, req Request) (*Response, error) {
	runID := req.DiscoveryRunID
	if runID == "" {
		runID = uuid.NewString()
	}
	if err := s.store.EnsureDiscoveryRun(ctx, runID); err != nil {
		return nil, err
	}

	resp := &Response{DiscoveryRunID: runID}
	accounts := make([]model.RawAccount, 0, len(req.Results))

	for _, result := range req.Results {
		sourceURL, ok := normalize.CanonicalURL(result.URL, "")
		if !ok {
			resp.Skipped++
			continue
		}

		var raw map[string]any
		if len(result.Raw) > 0 {
			_ = json.Unmarshal(result.Raw, &raw)
		}

		n := normalize.Normalize(sourceURL, result.Title, result.Snippet, raw)
		if n == nil {
			resp.Skipped++
			continue
		}

		query := result.Query
		if query == "" {
			query = req.Query
		}

		accounts = append(accounts, model.RawAccount{
			DiscoveryRunID:   runID,
			Query:            query,
			Position:         result.Position,
			Title:            result.Title,
			Snippet:          result.Snippet,
			SourceURL:        sourceURL,
			ProfileURL:       n.ProfileURL,
			Platform:         n.Platform,
			Handle:           n.Handle,
			StanSlug:         n.StanSlug,
			FollowerEstimate: n.FollowerEstimate,
			ProviderMeta:     result.Raw,
		})
	}

	inserted, err := s.store.UpsertRawAccounts(ctx, accounts)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: upsert accounts")
	}
	resp.Inserted = inserted

	stats, err := s.store.CoverageStats(ctx, runID)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: coverage stats")
	}
	resp.Report = buildReport(stats)

	zap.L().Info("ingestion complete",
		zap.String("run_id", runID),
		zap.Int64("inserted", inserted),
		zap.Int("skipped", resp.Skipped),
		zap.Float64("stan_coverage_pct", resp.Report.StanCoveragePct),
	)
	return resp, nil
}

// Coverage recomputes the report for an existing run without ingesting.
func (s *Service) Coverage(ctx context.Context, runID string) (*Report, error) {
	stats, err := s.store.CoverageStats(ctx, runID)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: coverage stats")
	}
	report := buildReport(stats)
	return &report, nil
}

func buildReport(stats *store.CoverageStats) Report {
	report := Report{
		TotalAccounts: stats.TotalAccounts,
		WithStanSlug:  stats.WithStanSlug,
		ByPlatform:    stats.ByPlatform,
	}
	if stats.TotalAccounts > 0 {
		report.StanCoveragePct = 100 * float64(stats.WithStanSlug) / float64(stats.TotalAccounts)
	}
	return report
}
