package stan

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/browser"
	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/store"
)

// Outcome labels one identity's enrichment result.
type Outcome string

const (
	OutcomeEnriched Outcome = "enriched"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// ItemResult is the per-identity entry in a batch response.
type ItemResult struct {
	IdentityID int64   `json:"identity_id"`
	StanSlug   string  `json:"stan_slug"`
	Outcome    Outcome `json:"outcome"`
	Confidence float64 `json:"confidence,omitempty"`
	Offers     int     `json:"offers,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Response aggregates a batch run.
type Response struct {
	Items    []ItemResult `json:"items"`
	Enriched int          `json:"enriched"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
}

// Enricher scrapes storefront pages for selected identities.
type Enricher struct {
	store     store.Store
	fetcher   browser.Fetcher
	maxOffers int
	timeout   time.Duration
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithMaxOffers caps offers kept per storefront.
func WithMaxOffers(n int) EnricherOption {
	return func(e *Enricher) { e.maxOffers = n }
}

// WithPageTimeout bounds each storefront fetch.
func WithPageTimeout(d time.Duration) EnricherOption {
	return func(e *Enricher) { e.timeout = d }
}

// NewEnricher creates an Enricher over the given store and page fetcher.
func NewEnricher(st store.Store, fetcher browser.Fetcher, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		store:     st,
		fetcher:   fetcher,
		maxOffers: 12,
		timeout:   25 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnrichBatch processes the identities matched by sel. One failed storefront
// does not abort the batch.
func (e *Enricher) EnrichBatch(ctx context.Context, sel store.StanSelector) (*Response, error) {
	targets, err := e.store.SelectStanEnrichmentTargets(ctx, sel)
	if err != nil {
		return nil, eris.Wrap(err, "stan: select targets")
	}

	resp := &Response{}
	for _, ident := range targets {
		item := e.enrichOne(ctx, ident)
		resp.Items = append(resp.Items, item)
		switch item.Outcome {
		case OutcomeEnriched:
			resp.Enriched++
		case OutcomeSkipped:
			resp.Skipped++
		case OutcomeFailed:
			resp.Failed++
		}
	}

	zap.L().Info("stan enrichment complete",
		zap.Int("enriched", resp.Enriched),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

func (e *Enricher) enrichOne(ctx context.Context, ident model.CreatorIdentity) ItemResult {
	item := ItemResult{IdentityID: ident.ID}
	if ident.CanonicalStanSlug == nil || *ident.CanonicalStanSlug == "" {
		item.Outcome = OutcomeSkipped
		return item
	}
	slug := *ident.CanonicalStanSlug
	item.StanSlug = slug

	pageCtx, cancel := context.WithTimeout(ctx, e.timeout)
	html, err := e.fetcher.HTML(pageCtx, "https://stan.store/"+slug)
	cancel()
	if err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		zap.L().Warn("stan page fetch failed",
			zap.Int64("identity_id", ident.ID),
			zap.String("slug", slug),
			zap.Error(err),
		)
		return item
	}

	snap := ParseSnapshot(html, e.maxOffers)
	profile := Derive(ident.ID, slug, snap)

	if err := e.store.UpsertStanProfile(ctx, profile); err != nil {
		item.Outcome = OutcomeFailed
		item.Error = fmt.Sprintf("persist: %v", err)
		return item
	}
	if err := e.store.SetIdentityStatus(ctx, ident.ID, model.IdentityStatusEnriched); err != nil {
		item.Outcome = OutcomeFailed
		item.Error = fmt.Sprintf("status: %v", err)
		return item
	}

	item.Outcome = OutcomeEnriched
	item.Confidence = profile.Confidence
	item.Offers = len(profile.Offers)
	return item
}
