package model

import (
	"time"
)

// OfferCard is one structured offer extracted from a stan.store page. Source
// records which extraction path produced it (callout, pill, or state blob).
type OfferCard struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
	CTA         string `json:"cta,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	Source      string `json:"source"`
}

// CTAStyle classifies how a storefront asks the visitor to act.
type CTAStyle string

const (
	CTAStyleConsultative  CTAStyle = "consultative"
	CTAStyleTransactional CTAStyle = "transactional"
	CTAStyleCommunity     CTAStyle = "community"
	CTAStyleInboundDM     CTAStyle = "inbound_dm"
	CTAStyleGeneric       CTAStyle = "generic"
)

// StanProfile is the enrichment result for an identity's commerce storefront.
// One per identity; recomputed on forced re-enrichment.
type StanProfile struct {
	ID              int64       `json:"id" db:"id"`
	IdentityID      int64       `json:"creator_identity_id" db:"creator_identity_id"`
	ProfileName     string      `json:"profile_name,omitempty" db:"profile_name"`
	Handle          string      `json:"handle,omitempty" db:"handle"`
	Bio             string      `json:"bio,omitempty" db:"bio"`
	Offers          []string    `json:"offers,omitempty" db:"offers"`
	OfferCards      []OfferCard `json:"offer_cards,omitempty" db:"offer_cards"`
	PricePoints     []float64   `json:"price_points,omitempty" db:"price_points"`
	ProductTypes    []string    `json:"product_types,omitempty" db:"product_types"`
	OutboundSocials []string    `json:"outbound_socials,omitempty" db:"outbound_socials"`
	Email           string      `json:"email,omitempty" db:"email"`
	CTAStyle        CTAStyle    `json:"cta_style" db:"cta_style"`
	HeaderImageURL  string      `json:"header_image_url,omitempty" db:"header_image_url"`
	Confidence      float64     `json:"confidence" db:"confidence"`
	SourceText      string      `json:"source_text,omitempty" db:"source_text"`
	SourceLength    int         `json:"source_length" db:"source_length"`
	FetchedAt       time.Time   `json:"fetched_at" db:"fetched_at"`
}

// DataQuality labels how well-evidenced a social signal is.
type DataQuality string

const (
	DataQualityObserved DataQuality = "observed"
	DataQualityInferred DataQuality = "inferred"
	DataQualitySparse   DataQuality = "sparse"
)

// SocialSignal is the per-(identity, platform) metrics estimate produced by
// the social enricher. Upserted on each rerun; last writer wins.
type SocialSignal struct {
	ID                 int64       `json:"id" db:"id"`
	IdentityID         int64       `json:"creator_identity_id" db:"creator_identity_id"`
	Platform           Platform    `json:"platform" db:"platform"`
	FollowersEstimate  int64       `json:"followers_estimate" db:"followers_estimate"`
	AvgViewsEstimate   int64       `json:"avg_views_estimate" db:"avg_views_estimate"`
	EngagementEstimate float64     `json:"engagement_estimate" db:"engagement_estimate"`
	SampleSize         int         `json:"sample_size" db:"sample_size"`
	DataQuality        DataQuality `json:"data_quality" db:"data_quality"`
	Confidence         float64     `json:"confidence" db:"confidence"`
	Evidence           []byte      `json:"evidence,omitempty" db:"evidence"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}
