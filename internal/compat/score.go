// Package compat scores a creator's feature set against a brand
// specification by blending five independent modules with intent-based
// weights and per-module confidence.
package compat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reachwell/creator-scout/internal/model"
)

// Module names, also the keys of the score's weight and module maps.
const (
	ModuleNiche      = "niche"
	ModuleTopics     = "topics"
	ModulePlatforms  = "platforms"
	ModuleEngagement = "engagement"
	ModuleAudience   = "audience"
)

var moduleNames = []string{ModuleNiche, ModuleTopics, ModulePlatforms, ModuleEngagement, ModuleAudience}

// engagementTarget is the rate treated as a full-score benchmark.
const engagementTarget = 0.045

// reasonCutoff gates which module reasons surface in the aggregate list.
const reasonCutoff = 0.15

// intentWeights holds each brand intent's base weight table over the five
// modules. Blended by the brand's intent vector and renormalized.
var intentWeights = map[model.BrandIntent]map[string]float64{
	model.IntentProductSale: {
		ModuleNiche: 0.30, ModuleTopics: 0.25, ModulePlatforms: 0.15,
		ModuleEngagement: 0.15, ModuleAudience: 0.15,
	},
	model.IntentCreatorEnablement: {
		ModuleNiche: 0.20, ModuleTopics: 0.20, ModulePlatforms: 0.20,
		ModuleEngagement: 0.25, ModuleAudience: 0.15,
	},
	model.IntentB2BLeadgen: {
		ModuleNiche: 0.25, ModuleTopics: 0.30, ModulePlatforms: 0.10,
		ModuleEngagement: 0.10, ModuleAudience: 0.25,
	},
	model.IntentCommunity: {
		ModuleNiche: 0.20, ModuleTopics: 0.20, ModulePlatforms: 0.15,
		ModuleEngagement: 0.25, ModuleAudience: 0.20,
	},
}

// Score computes the blended compatibility score for one (brand, creator)
// pair. Pure; safe to call concurrently.
func Score(brand model.BrandSpec, fs model.FeatureSet) model.CompatibilityScore {
	base := blendBaseWeights(brand.Intent)

	modules := map[string]model.ModuleScore{
		ModuleNiche:      nicheAffinity(brand, fs),
		ModuleTopics:     topicSimilarity(brand, fs),
		ModulePlatforms:  platformAlignment(brand, fs),
		ModuleEngagement: engagementFit(fs),
		ModuleAudience:   audienceFit(brand, fs),
	}

	weights := effectiveWeights(base, modules)

	weighted := 0.0
	for name, mod := range modules {
		weighted += weights[name] * mod.Score
	}

	boost := priorityBoost(brand, fs)
	total := clamp01(weighted + boost.Boost)

	return model.CompatibilityScore{
		Total:   total,
		Modules: modules,
		Weights: weights,
		Boost:   boost,
		Reasons: aggregateReasons(modules, boost),
	}
}

// BaseWeights returns the intent-blended module weights for a brand before
// any per-creator confidence adjustment.
func BaseWeights(brand model.BrandSpec) map[string]float64 {
	return blendBaseWeights(brand.Intent)
}

// blendBaseWeights averages the per-intent weight tables using the brand's
// intent vector, renormalized to sum to 1. An empty or zero vector falls
// back to the product-sale table.
func blendBaseWeights(intent map[model.BrandIntent]float64) map[string]float64 {
	total := 0.0
	for _, w := range intent {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return normalizeWeights(intentWeights[model.IntentProductSale])
	}

	blended := make(map[string]float64, len(moduleNames))
	for axis, w := range intent {
		table, ok := intentWeights[axis]
		if !ok || w <= 0 {
			continue
		}
		for _, name := range moduleNames {
			blended[name] += (w / total) * table[name]
		}
	}
	return normalizeWeights(blended)
}

// effectiveWeights scales each base weight by its module's confidence and
// renormalizes. When every confidence is ~zero the base weights are kept, so
// confidence collapse never zeroes the score.
func effectiveWeights(base map[string]float64, modules map[string]model.ModuleScore) map[string]float64 {
	eff := make(map[string]float64, len(base))
	total := 0.0
	for name, w := range base {
		eff[name] = w * modules[name].Confidence
		total += eff[name]
	}
	if total < 1e-6 {
		return normalizeWeights(base)
	}
	for name := range eff {
		eff[name] /= total
	}
	return eff
}

func nicheAffinity(brand model.BrandSpec, fs model.FeatureSet) model.ModuleScore {
	if brand.Category == "" || fs.Niche == "" {
		return model.ModuleScore{Score: 0, Confidence: 0.1}
	}
	score := phraseSimilarity(brand.Category, fs.Niche)
	mod := model.ModuleScore{Score: score, Confidence: fs.NicheConfidence}
	switch {
	case score >= 0.8:
		mod.Reasons = append(mod.Reasons, "strong niche match")
	case score >= 0.4:
		mod.Reasons = append(mod.Reasons, "adjacent niche")
	}
	return mod
}

func topicSimilarity(brand model.BrandSpec, fs model.FeatureSet) model.ModuleScore {
	if len(brand.Topics) == 0 || len(fs.TopTopics) == 0 {
		return model.ModuleScore{Score: 0, Confidence: 0.1}
	}
	score := bestMatchAverage(brand.Topics, fs.TopTopics)
	mod := model.ModuleScore{Score: score, Confidence: 0.9}
	switch {
	case score >= 0.8:
		mod.Reasons = append(mod.Reasons, "strong topic alignment")
	case score >= 0.4:
		mod.Reasons = append(mod.Reasons, "partial topic overlap")
	}
	return mod
}

func platformAlignment(brand model.BrandSpec, fs model.FeatureSet) model.ModuleScore {
	if len(brand.Platforms) == 0 {
		// Brand is platform-agnostic; neutral score, low weight.
		return model.ModuleScore{Score: 0.5, Confidence: 0.1}
	}
	if len(fs.Platforms) == 0 {
		return model.ModuleScore{Score: 0, Confidence: 0.2}
	}
	creator := make(map[string]bool, len(fs.Platforms))
	for _, p := range fs.Platforms {
		creator[normalizePhrase(p)] = true
	}
	matched := 0
	for _, p := range brand.Platforms {
		if creator[normalizePhrase(p)] {
			matched++
		}
	}
	score := float64(matched) / float64(len(brand.Platforms))
	mod := model.ModuleScore{Score: score, Confidence: 0.9}
	switch {
	case score == 1:
		mod.Reasons = append(mod.Reasons, "platform alignment")
	case score >= 0.5:
		mod.Reasons = append(mod.Reasons, "partial platform overlap")
	}
	return mod
}

func engagementFit(fs model.FeatureSet) model.ModuleScore {
	if fs.EstimatedEngagement <= 0 {
		// Unknown engagement; neutral score, low weight.
		return model.ModuleScore{Score: 0.5, Confidence: 0.1}
	}
	score := fs.EstimatedEngagement / engagementTarget
	if score > 1 {
		score = 1
	}
	mod := model.ModuleScore{Score: score, Confidence: 0.75}
	switch {
	case score >= 0.8:
		mod.Reasons = append(mod.Reasons, "strong engagement")
	case score >= 0.5:
		mod.Reasons = append(mod.Reasons, "healthy engagement")
	}
	return mod
}

func audienceFit(brand model.BrandSpec, fs model.FeatureSet) model.ModuleScore {
	if len(brand.Audiences) == 0 || len(fs.AudienceTypes) == 0 {
		return model.ModuleScore{Score: 0, Confidence: 0.1}
	}
	score := bestMatchAverage(brand.Audiences, fs.AudienceTypes)
	mod := model.ModuleScore{Score: score, Confidence: 0.8}
	switch {
	case score >= 0.8:
		mod.Reasons = append(mod.Reasons, "audience match")
	case score >= 0.4:
		mod.Reasons = append(mod.Reasons, "partial audience overlap")
	}
	return mod
}

// priorityBoost adds a bounded bonus when the brand's priority niches or
// topics resemble the creator's niche or top topics.
func priorityBoost(brand model.BrandSpec, fs model.FeatureSet) model.PriorityBoost {
	phrases := append(append([]string{}, brand.PriorityNiches...), brand.PriorityTopics...)
	if len(phrases) == 0 {
		return model.PriorityBoost{}
	}
	candidates := append([]string{fs.Niche}, fs.TopTopics...)

	var matches []model.PriorityMatch
	sum := 0.0
	for _, phrase := range phrases {
		best := 0.0
		matchedAgainst := ""
		for _, cand := range candidates {
			if sim := phraseSimilarity(phrase, cand); sim > best {
				best = sim
				matchedAgainst = cand
			}
		}
		if best >= priorityThreshold {
			matches = append(matches, model.PriorityMatch{
				Phrase:         phrase,
				MatchedAgainst: matchedAgainst,
				Similarity:     best,
			})
			sum += best
		}
	}
	if len(matches) == 0 {
		return model.PriorityBoost{}
	}

	avg := sum / float64(len(matches))
	boost := 0.04*float64(len(matches)) + 0.07*avg
	if boost > 0.16 {
		boost = 0.16
	}
	return model.PriorityBoost{Boost: boost, Matches: matches}
}

// aggregateReasons keeps reasons from modules whose contribution is
// material, plus one reason per priority match.
func aggregateReasons(modules map[string]model.ModuleScore, boost model.PriorityBoost) []string {
	var out []string
	for _, name := range moduleNames {
		mod := modules[name]
		if mod.Score*mod.Confidence >= reasonCutoff {
			out = append(out, mod.Reasons...)
		}
	}
	for _, m := range boost.Matches {
		out = append(out, fmt.Sprintf("priority fit: %s", strings.ToLower(m.Phrase)))
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizeWeights(w map[string]float64) map[string]float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	out := make(map[string]float64, len(moduleNames))
	if total == 0 {
		for _, name := range moduleNames {
			out[name] = 1.0 / float64(len(moduleNames))
		}
		return out
	}
	for _, name := range moduleNames {
		out[name] = w[name] / total
	}
	return out
}

// SortedWeights returns module names ordered by descending weight, for
// stable presentation.
func SortedWeights(w map[string]float64) []string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if w[names[i]] != w[names[j]] {
			return w[names[i]] > w[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
