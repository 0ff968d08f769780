// Package model defines the domain types shared across the discovery,
// resolution, enrichment, and scoring subsystems.
package model

import (
	"time"
)

// Platform identifies a social network a profile lives on.
type Platform string

const (
	PlatformX         Platform = "x"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformUnknown   Platform = "unknown"
)

// KnownPlatforms lists every platform the normalizer can detect.
var KnownPlatforms = []Platform{
	PlatformX, PlatformInstagram, PlatformLinkedIn, PlatformTikTok, PlatformYouTube,
}

// RawAccount is one evidence row produced by a crawl and persisted by
// ingestion. Unique per (discovery run, query, source URL); re-ingesting the
// same URL updates the row in place.
type RawAccount struct {
	ID               int64     `json:"id" db:"id"`
	DiscoveryRunID   string    `json:"discovery_run_id" db:"discovery_run_id"`
	Query            string    `json:"query" db:"query"`
	Position         int       `json:"position" db:"position"`
	Title            string    `json:"title" db:"title"`
	Snippet          string    `json:"snippet" db:"snippet"`
	SourceURL        string    `json:"source_url" db:"source_url"`
	ProfileURL       string    `json:"profile_url,omitempty" db:"profile_url"`
	Platform         Platform  `json:"platform" db:"platform"`
	Handle           string    `json:"handle,omitempty" db:"handle"`
	StanSlug         string    `json:"stan_slug,omitempty" db:"stan_slug"`
	FollowerEstimate *int64    `json:"follower_estimate,omitempty" db:"follower_estimate"`
	ProviderMeta     []byte    `json:"provider_meta,omitempty" db:"provider_meta"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// IdentityStatus tracks the lifecycle of a creator identity.
type IdentityStatus string

const (
	IdentityStatusActive   IdentityStatus = "active"
	IdentityStatusEnriched IdentityStatus = "enriched"
)

// CreatorIdentity is the canonical creator record. Created by the identity
// resolver on its first deterministic anchor and never deleted, only linked
// to as new evidence arrives.
type CreatorIdentity struct {
	ID                 int64          `json:"id" db:"id"`
	CanonicalStanSlug  *string        `json:"canonical_stan_slug,omitempty" db:"canonical_stan_slug"`
	CanonicalDomain    *string        `json:"canonical_domain,omitempty" db:"canonical_domain"`
	Status             IdentityStatus `json:"status" db:"status"`
	EngagementEstimate *float64       `json:"engagement_estimate,omitempty" db:"engagement_estimate"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// LinkReason records which anchor merged a raw account into an identity.
type LinkReason string

const (
	LinkReasonStanSlug            LinkReason = "stan_slug"
	LinkReasonPersonalDomain      LinkReason = "personal_domain"
	LinkReasonCrossLinkStanSlug   LinkReason = "cross_link_stan_slug"
	LinkReasonCrossLinkDomain     LinkReason = "cross_link_personal_domain"
)

// IdentityAccountLink joins a RawAccount to its CreatorIdentity. A raw
// account belongs to at most one identity once linked.
type IdentityAccountLink struct {
	ID           int64      `json:"id" db:"id"`
	IdentityID   int64      `json:"creator_identity_id" db:"creator_identity_id"`
	RawAccountID int64      `json:"raw_account_id" db:"raw_account_id"`
	Platform     Platform   `json:"platform" db:"platform"`
	Handle       string     `json:"handle,omitempty" db:"handle"`
	ProfileURL   string     `json:"profile_url,omitempty" db:"profile_url"`
	StanSlug     string     `json:"stan_slug,omitempty" db:"stan_slug"`
	Domain       string     `json:"domain,omitempty" db:"domain"`
	Reason       LinkReason `json:"reason" db:"reason"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// MergeCandidateStatus tracks review state of an unresolved account.
type MergeCandidateStatus string

const (
	MergeCandidatePending  MergeCandidateStatus = "pending"
	MergeCandidateReviewed MergeCandidateStatus = "reviewed"
)

// MergeCandidate queues a RawAccount that could not be deterministically
// anchored. Upserted (one row per raw account) as new evidence arrives.
type MergeCandidate struct {
	ID                  int64                `json:"id" db:"id"`
	RawAccountID        int64                `json:"raw_account_id" db:"raw_account_id"`
	CandidateIdentityID *int64               `json:"candidate_identity_id,omitempty" db:"candidate_identity_id"`
	Reason              string               `json:"reason" db:"reason"`
	Confidence          float64              `json:"confidence" db:"confidence"`
	Status              MergeCandidateStatus `json:"status" db:"status"`
	CreatedAt           time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at" db:"updated_at"`
}
