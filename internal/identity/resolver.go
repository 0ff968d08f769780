// Package identity merges persisted raw accounts into canonical creator
// identities using deterministic anchor priority rules.
package identity

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/normalize"
	"github.com/reachwell/creator-scout/internal/store"
)

// Merge-candidate confidence levels: medium when a handle co-occurrence
// suggests a candidate identity, low otherwise.
const (
	candidateConfidenceMedium = 0.5
	candidateConfidenceLow    = 0.2
)

// Resolver links raw accounts to creator identities.
type Resolver struct {
	store store.Store
}

// NewResolver creates a Resolver.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Stats counts what one resolution pass did.
type Stats struct {
	Processed         int `json:"processed"`
	Created           int `json:"created"`
	MergedBySlug      int `json:"merged_by_slug"`
	MergedByDomain    int `json:"merged_by_domain"`
	MergedByCrossLink int `json:"merged_by_cross_link"`
	AlreadyLinked     int `json:"already_linked"`
	QueuedAsCandidate int `json:"queued_as_candidate"`
}

// Response is the outcome of one resolution pass.
type Response struct {
	DiscoveryRunID string `json:"discovery_run_id,omitempty"`
	Stats          Stats  `json:"stats"`
}

// Resolve processes up to limit unlinked raw accounts, optionally scoped to
// one run. Safe to re-invoke incrementally.
func (r *Resolver) Resolve(ctx context.Context, runID string, limit int) (*Response, error) {
	if limit <= 0 {
		limit = 200
	}

	accounts, err := r.store.ListUnlinkedRawAccounts(ctx, runID, limit)
	if err != nil {
		return nil, eris.Wrap(err, "identity: list unlinked accounts")
	}

	resp := &Response{DiscoveryRunID: runID}
	for _, account := range accounts {
		if err := r.resolveOne(ctx, account, &resp.Stats); err != nil {
			return nil, err
		}
		resp.Stats.Processed++
	}

	if runID != "" {
		linked, err := r.store.CountLinkedInRun(ctx, runID)
		if err != nil {
			return nil, eris.Wrap(err, "identity: count linked")
		}
		resp.Stats.AlreadyLinked = linked - countNewLinks(resp.Stats)
		if resp.Stats.AlreadyLinked < 0 {
			resp.Stats.AlreadyLinked = 0
		}
	}

	zap.L().Info("identity resolution complete",
		zap.String("run_id", runID),
		zap.Int("processed", resp.Stats.Processed),
		zap.Int("created", resp.Stats.Created),
		zap.Int("queued", resp.Stats.QueuedAsCandidate),
	)
	return resp, nil
}

func countNewLinks(s Stats) int {
	return s.Created + s.MergedBySlug + s.MergedByDomain + s.MergedByCrossLink
}

// anchors computes the account's direct and cross-link anchors.
func anchors(account model.RawAccount) (directSlug, directDomain string, cross CrossLinks) {
	directSlug = account.StanSlug

	if account.Platform == model.PlatformUnknown {
		if u, err := url.Parse(account.SourceURL); err == nil {
			directDomain = personalDomain(u.Hostname())
		}
	}

	var raw map[string]any
	if len(account.ProviderMeta) > 0 {
		_ = json.Unmarshal(account.ProviderMeta, &raw)
	}
	cross = MineCrossLinks(normalize.SearchableText(account.Title, account.Snippet, raw))
	return directSlug, directDomain, cross
}

// resolveOne applies anchor priority: stan slug (direct over cross-link),
// then personal domain (direct over cross-link), else a merge candidate.
func (r *Resolver) resolveOne(ctx context.Context, account model.RawAccount, stats *Stats) error {
	directSlug, directDomain, cross := anchors(account)

	switch {
	case directSlug != "":
		return r.linkBySlug(ctx, account, directSlug, model.LinkReasonStanSlug, stats, &stats.MergedBySlug)
	case cross.StanSlug != "":
		return r.linkBySlug(ctx, account, cross.StanSlug, model.LinkReasonCrossLinkStanSlug, stats, &stats.MergedByCrossLink)
	case directDomain != "":
		return r.linkByDomain(ctx, account, directDomain, model.LinkReasonPersonalDomain, stats, &stats.MergedByDomain)
	case cross.Domain != "":
		return r.linkByDomain(ctx, account, cross.Domain, model.LinkReasonCrossLinkDomain, stats, &stats.MergedByCrossLink)
	default:
		return r.queueCandidate(ctx, account, stats)
	}
}

func (r *Resolver) linkBySlug(ctx context.Context, account model.RawAccount, slug string, reason model.LinkReason, stats *Stats, merged *int) error {
	ident, err := r.store.GetIdentityByStanSlug(ctx, slug)
	if err != nil {
		return eris.Wrap(err, "identity: lookup by slug")
	}

	if ident == nil {
		ident, err = r.store.InsertIdentity(ctx, &slug, nil)
		switch {
		case err == nil:
			stats.Created++
		case store.IsUniqueViolation(err):
			// Lost the race; the winner holds our anchor.
			ident, err = r.store.GetIdentityByStanSlug(ctx, slug)
			if err != nil {
				return eris.Wrap(err, "identity: re-read after slug race")
			}
			if ident == nil {
				return eris.Errorf("identity: slug %q vanished after unique violation", slug)
			}
			*merged++
		default:
			return eris.Wrap(err, "identity: insert by slug")
		}
	} else {
		*merged++
	}

	return r.link(ctx, ident.ID, account, reason, slug, "")
}

func (r *Resolver) linkByDomain(ctx context.Context, account model.RawAccount, domain string, reason model.LinkReason, stats *Stats, merged *int) error {
	ident, err := r.store.GetIdentityByDomain(ctx, domain)
	if err != nil {
		return eris.Wrap(err, "identity: lookup by domain")
	}

	if ident == nil {
		ident, err = r.store.InsertIdentity(ctx, nil, &domain)
		switch {
		case err == nil:
			stats.Created++
		case store.IsUniqueViolation(err):
			ident, err = r.store.GetIdentityByDomain(ctx, domain)
			if err != nil {
				return eris.Wrap(err, "identity: re-read after domain race")
			}
			if ident == nil {
				return eris.Errorf("identity: domain %q vanished after unique violation", domain)
			}
			*merged++
		default:
			return eris.Wrap(err, "identity: insert by domain")
		}
	} else {
		*merged++
	}

	return r.link(ctx, ident.ID, account, reason, "", domain)
}

func (r *Resolver) link(ctx context.Context, identityID int64, account model.RawAccount, reason model.LinkReason, slug, domain string) error {
	err := r.store.LinkAccount(ctx, model.IdentityAccountLink{
		IdentityID:   identityID,
		RawAccountID: account.ID,
		Platform:     account.Platform,
		Handle:       account.Handle,
		ProfileURL:   account.ProfileURL,
		StanSlug:     slug,
		Domain:       domain,
		Reason:       reason,
	})
	return eris.Wrap(err, "identity: link account")
}

// queueCandidate records an unresolvable account, suggesting an identity via
// handle co-occurrence on another platform when one exists.
func (r *Resolver) queueCandidate(ctx context.Context, account model.RawAccount, stats *Stats) error {
	candidate := model.MergeCandidate{
		RawAccountID: account.ID,
		Reason:       "no_anchor",
		Confidence:   candidateConfidenceLow,
	}

	if account.Handle != "" {
		identityID, err := r.store.FindHandleCoOccurrence(ctx, account.Handle, account.Platform)
		if err != nil {
			return eris.Wrap(err, "identity: handle co-occurrence")
		}
		if identityID != nil {
			candidate.CandidateIdentityID = identityID
			candidate.Reason = "handle_co_occurrence"
			candidate.Confidence = candidateConfidenceMedium
		}
	}

	if err := r.store.UpsertMergeCandidate(ctx, candidate); err != nil {
		return eris.Wrap(err, "identity: queue merge candidate")
	}
	stats.QueuedAsCandidate++
	return nil
}
