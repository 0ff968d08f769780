package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/internal/model"
)

func gymBrand() model.BrandSpec {
	return model.BrandSpec{
		Name:      "LiftFuel",
		Intent:    map[model.BrandIntent]float64{model.IntentProductSale: 1},
		Category:  "fitness",
		Topics:    []string{"gym routines"},
		Audiences: []string{"fitness enthusiasts"},
		Platforms: []string{"tiktok"},
	}
}

func gymCreator() model.FeatureSet {
	return model.FeatureSet{
		IdentityID:          1,
		Niche:               "fitness",
		NicheConfidence:     0.9,
		TopTopics:           []string{"gym routines", "nutrition"},
		AudienceTypes:       []string{"fitness enthusiasts"},
		Platforms:           []string{"tiktok", "instagram"},
		EstimatedEngagement: 0.05,
		PrimaryPlatform:     "tiktok",
		OverallConfidence:   0.8,
	}
}

func TestScore_AlignedCreatorNearsCeiling(t *testing.T) {
	score := Score(gymBrand(), gymCreator())

	assert.InDelta(t, 1.0, score.Modules[ModulePlatforms].Score, 1e-9)
	assert.InDelta(t, 1.0, score.Modules[ModuleTopics].Score, 1e-9)
	assert.InDelta(t, 1.0, score.Modules[ModuleEngagement].Score, 1e-9)
	assert.GreaterOrEqual(t, score.Total, 0.99)
	assert.LessOrEqual(t, score.Total, 1.0)

	assert.Contains(t, score.Reasons, "platform alignment")
	assert.Contains(t, score.Reasons, "strong topic alignment")
	assert.Contains(t, score.Reasons, "strong engagement")
}

func TestScore_PriorityNicheContainmentBoost(t *testing.T) {
	brand := gymBrand()
	brand.PriorityNiches = []string{"gym"}
	creator := gymCreator()
	creator.Niche = "fitness coaching"

	score := Score(brand, creator)

	require.Len(t, score.Boost.Matches, 1)
	// "gym" is contained in the "gym routines" topic.
	assert.Equal(t, "gym routines", score.Boost.Matches[0].MatchedAgainst)
	assert.InDelta(t, 0.84, score.Boost.Matches[0].Similarity, 1e-9)
	assert.InDelta(t, 0.04+0.07*0.84, score.Boost.Boost, 1e-9)
	assert.LessOrEqual(t, score.Boost.Boost, 0.16)
	assert.Contains(t, score.Reasons, "priority fit: gym")
	assert.LessOrEqual(t, score.Total, 1.0)
}

func TestScore_WeightsSumToOne(t *testing.T) {
	score := Score(gymBrand(), gymCreator())
	sum := 0.0
	for _, w := range score.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScore_EmptyCreatorStaysBounded(t *testing.T) {
	score := Score(gymBrand(), model.FeatureSet{})
	assert.GreaterOrEqual(t, score.Total, 0.0)
	assert.LessOrEqual(t, score.Total, 1.0)
}

func TestEffectiveWeights_ConfidenceCollapseKeepsBase(t *testing.T) {
	base := map[string]float64{
		ModuleNiche: 0.30, ModuleTopics: 0.25, ModulePlatforms: 0.15,
		ModuleEngagement: 0.15, ModuleAudience: 0.15,
	}
	modules := make(map[string]model.ModuleScore)
	for _, name := range moduleNames {
		modules[name] = model.ModuleScore{Score: 0.5, Confidence: 0}
	}
	got := effectiveWeights(base, modules)
	assert.InDelta(t, 0.30, got[ModuleNiche], 1e-9)
	assert.InDelta(t, 0.25, got[ModuleTopics], 1e-9)
}

func TestEffectiveWeights_SkewsTowardConfidentModules(t *testing.T) {
	base := map[string]float64{ModuleNiche: 0.5, ModuleTopics: 0.5}
	modules := map[string]model.ModuleScore{
		ModuleNiche:  {Confidence: 0.9},
		ModuleTopics: {Confidence: 0.1},
	}
	got := effectiveWeights(base, modules)
	assert.InDelta(t, 0.9, got[ModuleNiche], 1e-9)
	assert.InDelta(t, 0.1, got[ModuleTopics], 1e-9)
}

func TestBlendBaseWeights(t *testing.T) {
	// Equal product-sale and community intent averages the two tables.
	got := blendBaseWeights(map[model.BrandIntent]float64{
		model.IntentProductSale: 0.5,
		model.IntentCommunity:   0.5,
	})
	assert.InDelta(t, 0.25, got[ModuleNiche], 1e-9)
	assert.InDelta(t, 0.20, got[ModuleEngagement], 1e-9)

	sum := 0.0
	for _, w := range got {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Empty intent falls back to the product-sale table.
	fallback := blendBaseWeights(nil)
	assert.InDelta(t, 0.30, fallback[ModuleNiche], 1e-9)
}

func TestPhraseSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact", "gym routines", "Gym Routines", 1},
		{"containment", "gym", "gym routines", 0.84},
		{"token overlap", "gym routines", "home routines workout", 0.25},
		{"disjoint", "crypto", "skincare", 0},
		{"empty", "", "fitness", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, phraseSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestBestMatchAverage(t *testing.T) {
	got := bestMatchAverage(
		[]string{"gym routines", "yoga"},
		[]string{"gym routines", "nutrition"},
	)
	// Exact 1.0 for gym routines, 0 for yoga.
	assert.InDelta(t, 0.5, got, 1e-9)

	assert.Zero(t, bestMatchAverage(nil, []string{"a"}))
	assert.Zero(t, bestMatchAverage([]string{"a"}, nil))
}

func TestPlatformAlignment_AgnosticBrandIsNeutral(t *testing.T) {
	brand := gymBrand()
	brand.Platforms = nil
	mod := platformAlignment(brand, gymCreator())
	assert.InDelta(t, 0.5, mod.Score, 1e-9)
	assert.InDelta(t, 0.1, mod.Confidence, 1e-9)
}

func TestEngagementFit(t *testing.T) {
	mod := engagementFit(model.FeatureSet{EstimatedEngagement: 0.09})
	assert.InDelta(t, 1.0, mod.Score, 1e-9)

	mod = engagementFit(model.FeatureSet{EstimatedEngagement: 0.0225})
	assert.InDelta(t, 0.5, mod.Score, 1e-9)
	assert.Contains(t, mod.Reasons, "healthy engagement")

	mod = engagementFit(model.FeatureSet{})
	assert.InDelta(t, 0.5, mod.Score, 1e-9)
	assert.InDelta(t, 0.1, mod.Confidence, 1e-9)
}

func TestPriorityBoost_CapsAtMaximum(t *testing.T) {
	brand := gymBrand()
	brand.PriorityNiches = []string{"fitness", "gym routines", "nutrition"}
	boost := priorityBoost(brand, gymCreator())
	require.Len(t, boost.Matches, 3)
	assert.InDelta(t, 0.16, boost.Boost, 1e-9)
}

func TestPriorityBoost_BelowThresholdIgnored(t *testing.T) {
	brand := gymBrand()
	brand.PriorityTopics = []string{"quantum computing"}
	boost := priorityBoost(brand, gymCreator())
	assert.Empty(t, boost.Matches)
	assert.Zero(t, boost.Boost)
}

func TestSortedWeights(t *testing.T) {
	names := SortedWeights(map[string]float64{
		ModuleNiche: 0.3, ModuleTopics: 0.3, ModuleAudience: 0.4,
	})
	assert.Equal(t, []string{ModuleAudience, ModuleNiche, ModuleTopics}, names)
}
