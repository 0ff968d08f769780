// Package store persists discovery runs, raw accounts, creator identities,
// and enrichment results behind a driver-agnostic interface.
package store

import (
	"context"

	"github.com/reachwell/creator-scout/internal/model"
)

// PlatformCount is one bucket of the per-platform coverage histogram.
type PlatformCount struct {
	Platform model.Platform `json:"platform"`
	Count    int            `json:"count"`
}

// CoverageStats summarizes ingestion coverage for one discovery run.
type CoverageStats struct {
	TotalAccounts int             `json:"total_accounts"`
	WithStanSlug  int             `json:"with_stan_slug"`
	ByPlatform    []PlatformCount `json:"by_platform"`
}

// StanSelector scopes which identities stan enrichment processes. Zero value
// selects every identity with a canonical stan slug.
type StanSelector struct {
	DiscoveryRunID string
	IdentityID     int64
	StanSlug       string
	Force          bool
	Limit          int
}

// SocialSelector scopes which identities social enrichment processes.
type SocialSelector struct {
	IdentityID int64
	Force      bool
	Limit      int
}

// Store defines the persistence interface for the discovery pipeline.
type Store interface {
	// Discovery runs
	EnsureDiscoveryRun(ctx context.Context, runID string) error

	// Raw accounts
	UpsertRawAccounts(ctx context.Context, accounts []model.RawAccount) (int64, error)
	CoverageStats(ctx context.Context, runID string) (*CoverageStats, error)
	ListUnlinkedRawAccounts(ctx context.Context, runID string, limit int) ([]model.RawAccount, error)
	CountLinkedInRun(ctx context.Context, runID string) (int, error)

	// Identities
	InsertIdentity(ctx context.Context, stanSlug, domain *string) (*model.CreatorIdentity, error)
	GetIdentity(ctx context.Context, id int64) (*model.CreatorIdentity, error)
	GetIdentityByStanSlug(ctx context.Context, slug string) (*model.CreatorIdentity, error)
	GetIdentityByDomain(ctx context.Context, domain string) (*model.CreatorIdentity, error)
	ListIdentities(ctx context.Context, limit, offset int) ([]model.CreatorIdentity, error)
	SetIdentityStatus(ctx context.Context, id int64, status model.IdentityStatus) error
	UpdateIdentityEngagement(ctx context.Context, id int64, estimate float64) error

	// Links and merge candidates
	LinkAccount(ctx context.Context, link model.IdentityAccountLink) error
	ListLinkedAccounts(ctx context.Context, identityID int64) ([]model.IdentityAccountLink, error)
	ListLinkedRawAccounts(ctx context.Context, identityID int64) ([]model.RawAccount, error)
	FindHandleCoOccurrence(ctx context.Context, handle string, excludePlatform model.Platform) (*int64, error)
	UpsertMergeCandidate(ctx context.Context, mc model.MergeCandidate) error

	// Stan profiles
	SelectStanEnrichmentTargets(ctx context.Context, sel StanSelector) ([]model.CreatorIdentity, error)
	UpsertStanProfile(ctx context.Context, p model.StanProfile) error
	GetStanProfile(ctx context.Context, identityID int64) (*model.StanProfile, error)

	// Social signals
	SelectSocialEnrichmentTargets(ctx context.Context, sel SocialSelector) ([]model.CreatorIdentity, error)
	UpsertSocialSignals(ctx context.Context, signals []model.SocialSignal) error
	ListSocialSignals(ctx context.Context, identityID int64) ([]model.SocialSignal, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
