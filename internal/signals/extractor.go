// Package signals derives the compatibility feature vector for a creator
// from storefront, social, and search-result evidence.
package signals

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/social"
	"github.com/reachwell/creator-scout/internal/store"
)

const maxTopTopics = 5

// Extractor loads an identity's evidence and derives its feature set.
type Extractor struct {
	store store.Store
}

// NewExtractor creates an Extractor over the given store.
func NewExtractor(st store.Store) *Extractor {
	return &Extractor{store: st}
}

// FeatureSet assembles the compatibility features for one identity.
func (x *Extractor) FeatureSet(ctx context.Context, identityID int64) (*model.FeatureSet, error) {
	ident, err := x.store.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, eris.Wrap(err, "signals: load identity")
	}
	if ident == nil {
		return nil, eris.Errorf("signals: identity %d not found", identityID)
	}
	profile, err := x.store.GetStanProfile(ctx, identityID)
	if err != nil {
		return nil, eris.Wrap(err, "signals: load stan profile")
	}
	sigs, err := x.store.ListSocialSignals(ctx, identityID)
	if err != nil {
		return nil, eris.Wrap(err, "signals: load social signals")
	}
	accounts, err := x.store.ListLinkedRawAccounts(ctx, identityID)
	if err != nil {
		return nil, eris.Wrap(err, "signals: load linked accounts")
	}
	fs := Derive(identityID, profile, sigs, accounts)
	return &fs, nil
}

// Derive computes a feature set from already-loaded evidence. Pure; any of
// the evidence inputs may be empty and only degrade confidence.
func Derive(identityID int64, profile *model.StanProfile, sigs []model.SocialSignal, accounts []model.RawAccount) model.FeatureSet {
	corpus := buildCorpus(profile, accounts)

	niche, nicheConf := pickNiche(corpus)
	topics := matchLabels(topicRules, corpus)
	if len(topics) > maxTopTopics {
		topics = topics[:maxTopTopics]
	}
	audiences := matchLabels(audienceRules, corpus)
	products := mergeProducts(profile, corpus)
	intents := matchLabels(intentRules, corpus)

	platforms, primary := rankPlatforms(sigs, accounts)
	selling := sellingStyle(profile, intents)

	fs := model.FeatureSet{
		IdentityID:          identityID,
		Niche:               niche,
		NicheConfidence:     nicheConf,
		TopTopics:           topics,
		AudienceTypes:       audiences,
		ProductsSold:        products,
		Platforms:           platforms,
		ContentStyle:        contentStyle(primary),
		EstimatedEngagement: social.OverallEngagement(sigs),
		PrimaryPlatform:     primary,
		SellingStyle:        selling,
		IntentSignals:       intents,
	}
	fs.BuyingIntentScore = buyingIntent(profile, products, intents, selling, sigs)
	fs.OverallConfidence = overallConfidence(profile, sigs, nicheConf, topics, audiences, products)
	return fs
}

// buildCorpus lowers and concatenates every text fragment we hold about the
// creator: storefront bio/offers/product types plus SERP titles, snippets,
// and the queries that surfaced them.
func buildCorpus(profile *model.StanProfile, accounts []model.RawAccount) string {
	var parts []string
	if profile != nil {
		parts = append(parts, profile.ProfileName, profile.Bio)
		parts = append(parts, profile.Offers...)
		for _, card := range profile.OfferCards {
			parts = append(parts, card.Title, card.Description, card.CTA)
		}
		parts = append(parts, profile.ProductTypes...)
		parts = append(parts, profile.SourceText)
	}
	for _, acct := range accounts {
		parts = append(parts, acct.Title, acct.Snippet, acct.Query)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// pickNiche scans the ordered niche rules and keeps the one with the highest
// keyword-hit ratio. Ties and zero hits fall back to creator monetization.
func pickNiche(corpus string) (string, float64) {
	best := ""
	bestRatio := 0.0
	ties := 0
	for _, rule := range nicheRules {
		hits := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(corpus, kw) {
				hits++
			}
		}
		ratio := float64(hits) / float64(len(rule.Keywords))
		switch {
		case ratio > bestRatio:
			best = rule.Niche
			bestRatio = ratio
			ties = 1
		case ratio == bestRatio && ratio > 0:
			ties++
		}
	}
	if bestRatio == 0 || ties > 1 {
		return fallbackNiche, 0.3
	}
	conf := 0.35 + 0.6*bestRatio
	if conf > 0.95 {
		conf = 0.95
	}
	return best, conf
}

func matchLabels(rules []labelRule, corpus string) []string {
	var out []string
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(corpus, kw) {
				out = append(out, rule.Label)
				break
			}
		}
	}
	return out
}

// mergeProducts unions the storefront's classified product types with
// keyword matches from the wider corpus, preserving storefront order first.
func mergeProducts(profile *model.StanProfile, corpus string) []string {
	seen := make(map[string]bool)
	var out []string
	if profile != nil {
		for _, pt := range profile.ProductTypes {
			label := strings.ReplaceAll(pt, "_", " ")
			if !seen[label] {
				seen[label] = true
				out = append(out, label)
			}
		}
	}
	for _, label := range matchLabels(productRules, corpus) {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}

// rankPlatforms orders the creator's platforms by estimated reach. Social
// signals rank by follower estimate; platforms known only from linked
// accounts rank by corroborating row count.
func rankPlatforms(sigs []model.SocialSignal, accounts []model.RawAccount) ([]string, string) {
	type rank struct {
		name      string
		followers int64
		weight    float64
	}
	byName := make(map[string]*rank)
	for _, sig := range sigs {
		byName[string(sig.Platform)] = &rank{
			name:      string(sig.Platform),
			followers: sig.FollowersEstimate,
			weight:    sig.Confidence,
		}
	}
	for _, acct := range accounts {
		if acct.Platform == model.PlatformUnknown || acct.Platform == "" {
			continue
		}
		name := string(acct.Platform)
		r := byName[name]
		if r == nil {
			r = &rank{name: name}
			byName[name] = r
		}
		r.weight += 0.1
		if acct.FollowerEstimate != nil && *acct.FollowerEstimate > r.followers {
			r.followers = *acct.FollowerEstimate
		}
	}
	if len(byName) == 0 {
		return nil, ""
	}

	ranks := make([]rank, 0, len(byName))
	for _, r := range byName {
		ranks = append(ranks, *r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].followers != ranks[j].followers {
			return ranks[i].followers > ranks[j].followers
		}
		if ranks[i].weight != ranks[j].weight {
			return ranks[i].weight > ranks[j].weight
		}
		return ranks[i].name < ranks[j].name
	})

	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = r.name
	}
	return names, names[0]
}

func sellingStyle(profile *model.StanProfile, intents []string) string {
	var cta model.CTAStyle
	if profile != nil {
		cta = profile.CTAStyle
	}
	switch cta {
	case model.CTAStyleConsultative:
		return "consultative"
	case model.CTAStyleTransactional:
		return "direct response"
	case model.CTAStyleCommunity:
		return "community-led"
	case model.CTAStyleInboundDM:
		return "relationship-driven"
	}
	if hasLabel(intents, "direct_purchase") {
		return "direct response"
	}
	if hasLabel(intents, "lead_gen") {
		return "consultative"
	}
	return "soft sell"
}

func contentStyle(primaryPlatform string) string {
	switch primaryPlatform {
	case string(model.PlatformTikTok), string(model.PlatformInstagram):
		return "short-form video"
	case string(model.PlatformYouTube):
		return "long-form video"
	case string(model.PlatformX):
		return "short-form text"
	case string(model.PlatformLinkedIn):
		return "professional thought leadership"
	default:
		return "mixed"
	}
}

func buyingIntent(profile *model.StanProfile, products, intents []string, selling string, sigs []model.SocialSignal) float64 {
	score := 0.3
	if profile != nil && len(profile.PricePoints) > 0 {
		score += 0.08
	}
	if len(products) >= 1 {
		score += 0.06
	}
	if len(products) >= 3 {
		score += 0.05
	}
	if hasLabel(intents, "direct_purchase") {
		score += 0.10
	}
	if hasLabel(intents, "lead_gen") {
		score += 0.08
	}
	if hasLabel(intents, "affiliate") {
		score += 0.05
	}
	if selling == "direct response" || selling == "consultative" {
		score += 0.07
	}
	if len(sigs) > 0 {
		score += 0.05
	}
	return clamp(score, 0.1, 0.98)
}

// overallConfidence blends storefront extraction confidence, social signal
// confidence, niche-match confidence, and label coverage.
func overallConfidence(profile *model.StanProfile, sigs []model.SocialSignal, nicheConf float64, topics, audiences, products []string) float64 {
	stanConf := 0.0
	if profile != nil {
		stanConf = profile.Confidence
	}
	socialConf := 0.0
	if len(sigs) > 0 {
		for _, sig := range sigs {
			socialConf += sig.Confidence
		}
		socialConf /= float64(len(sigs))
	}
	coverage := 0.0
	if len(topics) > 0 {
		coverage += 1.0 / 3
	}
	if len(audiences) > 0 {
		coverage += 1.0 / 3
	}
	if len(products) > 0 {
		coverage += 1.0 / 3
	}
	blended := 0.35*stanConf + 0.25*socialConf + 0.2*nicheConf + 0.2*coverage
	return clamp(blended, 0.2, 0.98)
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
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
