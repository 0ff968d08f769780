package model

// BrandIntent is one axis of a brand's intent vector.
type BrandIntent string

const (
	IntentProductSale       BrandIntent = "product_sale"
	IntentCreatorEnablement BrandIntent = "creator_enablement"
	IntentB2BLeadgen        BrandIntent = "b2b_leadgen"
	IntentCommunity         BrandIntent = "community"
)

// BrandSpec is the externally supplied brand specification consumed by the
// compatibility scoring engine. Produced upstream by brand profiling and
// treated here as already validated.
type BrandSpec struct {
	Name           string                  `json:"name" yaml:"name"`
	Intent         map[BrandIntent]float64 `json:"intent" yaml:"intent"`
	Category       string                  `json:"category" yaml:"category"`
	Topics         []string                `json:"topics" yaml:"topics"`
	Audiences      []string                `json:"audiences" yaml:"audiences"`
	Outcomes       []string                `json:"outcomes,omitempty" yaml:"outcomes"`
	Platforms      []string                `json:"platforms" yaml:"platforms"`
	PriorityNiches []string                `json:"priority_niches,omitempty" yaml:"priority_niches"`
	PriorityTopics []string                `json:"priority_topics,omitempty" yaml:"priority_topics"`
}

// FeatureSet is the derived compatibility feature vector for one creator.
// Computed on demand from the stan profile, social signals, and SERP
// evidence; not persisted as its own table.
type FeatureSet struct {
	IdentityID          int64    `json:"creator_identity_id"`
	Niche               string   `json:"niche"`
	NicheConfidence     float64  `json:"niche_confidence"`
	TopTopics           []string `json:"top_topics"`
	AudienceTypes       []string `json:"audience_types"`
	ProductsSold        []string `json:"products_sold"`
	Platforms           []string `json:"platforms"`
	ContentStyle        string   `json:"content_style"`
	EstimatedEngagement float64  `json:"estimated_engagement"`
	PrimaryPlatform     string   `json:"primary_platform"`
	BuyingIntentScore   float64  `json:"buying_intent_score"`
	SellingStyle        string   `json:"selling_style"`
	IntentSignals       []string `json:"intent_signals"`
	OverallConfidence   float64  `json:"overall_confidence"`
}

// ModuleScore is one compatibility module's contribution.
type ModuleScore struct {
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
}

// PriorityMatch records one priority phrase that matched the creator.
type PriorityMatch struct {
	Phrase         string  `json:"phrase"`
	MatchedAgainst string  `json:"matched_against"`
	Similarity     float64 `json:"similarity"`
}

// PriorityBoost is the bounded additive boost from brand priority phrases.
type PriorityBoost struct {
	Boost   float64         `json:"boost"`
	Matches []PriorityMatch `json:"matches,omitempty"`
}

// CompatibilityScore is the blended brand-creator score. Computed per
// (brand, creator) pair on demand; not a durable entity.
type CompatibilityScore struct {
	Total   float64                `json:"total"`
	Modules map[string]ModuleScore `json:"modules"`
	Weights map[string]float64     `json:"weights"`
	Boost   PriorityBoost          `json:"priority_boost"`
	Reasons []string               `json:"reasons,omitempty"`
}
