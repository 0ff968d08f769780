// Package social synthesizes per-platform follower, view, and engagement
// estimates for resolved creator identities from linked-account evidence and
// storefront outbound links.
package social

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/normalize"
	"github.com/reachwell/creator-scout/internal/store"
)

// platformPrior holds the baseline view-rate and engagement-rate assumed for
// a platform before any observed evidence is applied.
type platformPrior struct {
	ViewRate       float64
	EngagementRate float64
}

var platformPriors = map[model.Platform]platformPrior{
	model.PlatformTikTok:    {ViewRate: 0.55, EngagementRate: 0.045},
	model.PlatformInstagram: {ViewRate: 0.30, EngagementRate: 0.028},
	model.PlatformYouTube:   {ViewRate: 0.18, EngagementRate: 0.035},
	model.PlatformX:         {ViewRate: 0.12, EngagementRate: 0.018},
	model.PlatformLinkedIn:  {ViewRate: 0.08, EngagementRate: 0.022},
}

var defaultPrior = platformPrior{ViewRate: 0.10, EngagementRate: 0.020}

const (
	confPlatformKnown  = 0.10
	confFollowers      = 0.34
	confTwoSignals     = 0.14
	confFourSignals    = 0.06
	confOutboundLinked = 0.12
	confAvgViews       = 0.10

	confidenceFloor = 0.20
	confidenceCeil  = 0.95

	engagementFloor = 0.008
	engagementCeil  = 0.20

	signalMultiplierStep = 0.06
	signalMultiplierCap  = 1.30
)

// Outcome labels one identity's enrichment result.
type Outcome string

const (
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ItemResult is the per-identity entry in a batch response.
type ItemResult struct {
	IdentityID int64                `json:"identity_id"`
	Outcome    Outcome              `json:"outcome"`
	Signals    []model.SocialSignal `json:"signals,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Response aggregates a batch run.
type Response struct {
	Items   []ItemResult `json:"items"`
	Updated int          `json:"updated"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
}

// Request scopes one enrichment batch.
type Request struct {
	IdentityID          int64
	Limit               int
	Force               bool
	MinFollowerEstimate int64
	DryRun              bool
}

// evidence is the persisted audit blob backing one synthesized signal.
type evidence struct {
	MaxFollowers   int64   `json:"max_followers"`
	SignalRows     int     `json:"signal_rows"`
	OutboundLinked bool    `json:"outbound_linked"`
	PriorViewRate  float64 `json:"prior_view_rate"`
	PriorEngage    float64 `json:"prior_engagement_rate"`
}

// platformEvidence accumulates linked-account observations for one platform.
type platformEvidence struct {
	platform     model.Platform
	maxFollowers int64
	rows         int
	outbound     bool
}

// Enricher synthesizes social signals for identities in batches.
type Enricher struct {
	store         store.Store
	maxConcurrent int
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithMaxConcurrent bounds how many identities are processed in parallel.
func WithMaxConcurrent(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.maxConcurrent = n
		}
	}
}

// NewEnricher creates an Enricher over the given store.
func NewEnricher(st store.Store, opts ...EnricherOption) *Enricher {
	e := &Enricher{store: st, maxConcurrent: 4}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnrichBatch processes the identities matched by req. Identities are
// independent, so they fan out across a bounded worker group; one failure
// does not abort the batch.
func (e *Enricher) EnrichBatch(ctx context.Context, req Request) (*Response, error) {
	targets, err := e.store.SelectSocialEnrichmentTargets(ctx, store.SocialSelector{
		IdentityID: req.IdentityID,
		Force:      req.Force,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "social: select targets")
	}

	items := make([]ItemResult, len(targets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, ident := range targets {
		g.Go(func() error {
			item := e.enrichOne(gctx, ident, req)
			mu.Lock()
			items[i] = item
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "social: batch")
	}

	resp := &Response{Items: items}
	for _, item := range items {
		switch item.Outcome {
		case OutcomeUpdated:
			resp.Updated++
		case OutcomeSkipped:
			resp.Skipped++
		case OutcomeFailed:
			resp.Failed++
		}
	}

	zap.L().Info("social enrichment complete",
		zap.Int("updated", resp.Updated),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", resp.Failed),
		zap.Bool("dry_run", req.DryRun),
	)
	return resp, nil
}

func (e *Enricher) enrichOne(ctx context.Context, ident model.CreatorIdentity, req Request) ItemResult {
	item := ItemResult{IdentityID: ident.ID}

	byPlatform, err := e.gatherEvidence(ctx, ident.ID)
	if err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		zap.L().Warn("social evidence gathering failed",
			zap.Int64("identity_id", ident.ID), zap.Error(err))
		return item
	}
	if len(byPlatform) == 0 {
		item.Outcome = OutcomeSkipped
		return item
	}

	var signals []model.SocialSignal
	for _, ev := range byPlatform {
		if req.MinFollowerEstimate > 0 && ev.maxFollowers < req.MinFollowerEstimate {
			continue
		}
		signals = append(signals, synthesize(ident.ID, ev))
	}
	if len(signals) == 0 {
		item.Outcome = OutcomeSkipped
		return item
	}
	sort.Slice(signals, func(i, j int) bool { return signals[i].Platform < signals[j].Platform })
	item.Signals = signals

	if req.DryRun {
		item.Outcome = OutcomeUpdated
		return item
	}

	if err := e.store.UpsertSocialSignals(ctx, signals); err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		return item
	}
	if err := e.store.UpdateIdentityEngagement(ctx, ident.ID, OverallEngagement(signals)); err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		return item
	}
	item.Outcome = OutcomeUpdated
	return item
}

// gatherEvidence groups linked-account observations by platform and folds in
// outbound-social platforms from the identity's storefront profile.
func (e *Enricher) gatherEvidence(ctx context.Context, identityID int64) (map[model.Platform]*platformEvidence, error) {
	accounts, err := e.store.ListLinkedRawAccounts(ctx, identityID)
	if err != nil {
		return nil, eris.Wrap(err, "social: list linked accounts")
	}

	byPlatform := make(map[model.Platform]*platformEvidence)
	for _, acct := range accounts {
		if acct.Platform == model.PlatformUnknown || acct.Platform == "" {
			continue
		}
		ev := byPlatform[acct.Platform]
		if ev == nil {
			ev = &platformEvidence{platform: acct.Platform}
			byPlatform[acct.Platform] = ev
		}
		ev.rows++
		if acct.FollowerEstimate != nil && *acct.FollowerEstimate > ev.maxFollowers {
			ev.maxFollowers = *acct.FollowerEstimate
		}
	}

	profile, err := e.store.GetStanProfile(ctx, identityID)
	if err != nil {
		return nil, eris.Wrap(err, "social: load stan profile")
	}
	if profile != nil {
		for _, raw := range profile.OutboundSocials {
			platform := platformFromURL(raw)
			if platform == model.PlatformUnknown {
				continue
			}
			ev := byPlatform[platform]
			if ev == nil {
				ev = &platformEvidence{platform: platform}
				byPlatform[platform] = ev
			}
			ev.outbound = true
		}
	}
	return byPlatform, nil
}

// synthesize converts one platform's accumulated evidence into a signal row.
func synthesize(identityID int64, ev *platformEvidence) model.SocialSignal {
	prior, known := platformPriors[ev.platform]
	if !known {
		prior = defaultPrior
	}

	signalCount := ev.rows
	if ev.outbound {
		signalCount++
	}

	var avgViews int64
	if ev.maxFollowers > 0 {
		multiplier := 1 + signalMultiplierStep*float64(signalCount-1)
		if multiplier > signalMultiplierCap {
			multiplier = signalMultiplierCap
		}
		avgViews = int64(float64(ev.maxFollowers) * prior.ViewRate * multiplier)
	}

	engagement := prior.EngagementRate + 0.002*float64(min(signalCount, 5))
	if ev.outbound {
		engagement += 0.004
	}
	engagement = clamp(engagement, engagementFloor, engagementCeil)

	confidence := 0.0
	if known {
		confidence += confPlatformKnown
	}
	if ev.maxFollowers > 0 {
		confidence += confFollowers
	}
	if signalCount >= 2 {
		confidence += confTwoSignals
	}
	if signalCount >= 4 {
		confidence += confFourSignals
	}
	if ev.outbound {
		confidence += confOutboundLinked
	}
	if avgViews > 0 {
		confidence += confAvgViews
	}
	confidence = clamp(confidence, confidenceFloor, confidenceCeil)

	blob, _ := json.Marshal(evidence{
		MaxFollowers:   ev.maxFollowers,
		SignalRows:     ev.rows,
		OutboundLinked: ev.outbound,
		PriorViewRate:  prior.ViewRate,
		PriorEngage:    prior.EngagementRate,
	})

	return model.SocialSignal{
		IdentityID:         identityID,
		Platform:           ev.platform,
		FollowersEstimate:  ev.maxFollowers,
		AvgViewsEstimate:   avgViews,
		EngagementEstimate: engagement,
		SampleSize:         signalCount,
		DataQuality:        quality(ev),
		Confidence:         confidence,
		Evidence:           blob,
	}
}

func quality(ev *platformEvidence) model.DataQuality {
	switch {
	case ev.maxFollowers > 0 && ev.rows >= 2:
		return model.DataQualityObserved
	case ev.maxFollowers > 0:
		return model.DataQualityInferred
	default:
		return model.DataQualitySparse
	}
}

// OverallEngagement is the confidence/followers-weighted average engagement
// rate across an identity's platform signals, written back to the creator
// record.
func OverallEngagement(signals []model.SocialSignal) float64 {
	var weighted, total float64
	for _, sig := range signals {
		followers := float64(sig.FollowersEstimate)
		if followers < 1 {
			followers = 1
		}
		w := sig.Confidence * followers
		weighted += sig.EngagementEstimate * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func platformFromURL(raw string) model.Platform {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return model.PlatformUnknown
	}
	return normalize.DetectPlatform(u.Host)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
