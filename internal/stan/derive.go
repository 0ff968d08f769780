package stan

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reachwell/creator-scout/internal/model"
)

var titleCaser = cases.Title(language.English)

var (
	nameHandleRe = regexp.MustCompile(`^\s*(.+?)\s*\(@([A-Za-z0-9_.\-]{2,64})\)`)
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// excludedSocialHosts are analytics and first-party hosts that never count
// as a creator's outbound presence.
var excludedSocialHosts = []string{
	"stan.store", "google-analytics.com", "googletagmanager.com",
	"facebook.com/tr", "hotjar.com", "segment.com",
}

// Derive interprets a page snapshot into a StanProfile for an identity.
func Derive(identityID int64, slug string, snap *Snapshot) model.StanProfile {
	profile := model.StanProfile{
		IdentityID:   identityID,
		OfferCards:   snap.OfferCards,
		SourceText:   snap.Text,
		SourceLength: len(snap.Text),
	}

	profile.ProfileName, profile.Handle = nameAndHandle(snap, slug)
	profile.Bio = firstNonEmpty(snap.HeaderBio, snap.MetaDescription)
	profile.HeaderImageURL = snap.OGImage

	for _, card := range snap.OfferCards {
		profile.Offers = append(profile.Offers, card.Title)
	}
	profile.PricePoints = pricePoints(snap)
	profile.ProductTypes = classifyProducts(snap)
	profile.OutboundSocials = outboundSocials(snap.SocialLinks)
	if m := emailRe.FindString(snap.Text); m != "" {
		profile.Email = strings.ToLower(m)
	}
	profile.CTAStyle = classifyCTA(snap)
	profile.Confidence = confidence(profile)
	return profile
}

// nameAndHandle prefers the rendered header name, falling back to the page
// title's "Name (@handle)" form. The slug is the handle of last resort.
func nameAndHandle(snap *Snapshot, slug string) (string, string) {
	name := snap.HeaderName
	handle := slug

	source := firstNonEmpty(snap.HeaderName, snap.Title)
	if m := nameHandleRe.FindStringSubmatch(source); m != nil {
		if name == "" || name == source {
			name = strings.TrimSpace(m[1])
		}
		handle = strings.ToLower(m[2])
	} else if name == "" && snap.Title != "" {
		// Titles read "Maya Lifts | Stan Store"; keep the left side.
		name = strings.TrimSpace(strings.SplitN(snap.Title, "|", 2)[0])
	}
	if name == "" {
		name = displayNameFromSlug(slug)
	}
	return name, handle
}

// displayNameFromSlug turns "maya-lifts" into "Maya Lifts" when the page
// offered no rendered name at all.
func displayNameFromSlug(slug string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(slug)
	return titleCaser.String(strings.TrimSpace(cleaned))
}

// pricePoints merges offer-card prices with a money scan of the page text,
// deduplicated and sorted descending.
func pricePoints(snap *Snapshot) []float64 {
	seen := make(map[float64]bool)
	var points []float64

	add := func(raw string) {
		m := moneyRe.FindStringSubmatch(raw)
		if m == nil {
			return
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || v <= 0 || seen[v] {
			return
		}
		seen[v] = true
		points = append(points, v)
	}

	for _, card := range snap.OfferCards {
		add(card.Price)
	}
	for _, m := range moneyRe.FindAllString(snap.Text, -1) {
		add(m)
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(points)))
	return points
}

// productRules maps keyword hits to product types, checked in order.
var productRules = []struct {
	label string
	terms []string
}{
	{"course", []string{"course", "masterclass", "curriculum", "modules"}},
	{"coaching", []string{"coaching", "1:1", "1-on-1", "book a call", "consultation", "mentorship"}},
	{"template", []string{"template", "preset", "swipe file", "notion"}},
	{"membership", []string{"membership", "community", "discord", "exclusive access"}},
	{"newsletter", []string{"newsletter", "subscribe", "weekly email"}},
	{"digital_guide", []string{"ebook", "e-book", "guide", "pdf", "workbook", "meal plan"}},
	{"service", []string{"done for you", "audit", "agency", "editing service"}},
}

// classifyProducts matches keyword rules against page text and any product
// type hints embedded in the state blob.
func classifyProducts(snap *Snapshot) []string {
	corpus := strings.ToLower(snap.Text)
	for _, card := range snap.OfferCards {
		corpus += " " + strings.ToLower(card.Title+" "+card.Description+" "+card.CTA)
	}

	var types []string
	for _, rule := range productRules {
		for _, term := range rule.terms {
			if strings.Contains(corpus, term) {
				types = append(types, rule.label)
				break
			}
		}
	}
	return types
}

// ctaRules classify how the storefront asks visitors to act, checked in
// order; the first hit wins.
var ctaRules = []struct {
	style model.CTAStyle
	terms []string
}{
	{model.CTAStyleConsultative, []string{"book a call", "free consultation", "apply now", "schedule", "discovery call"}},
	{model.CTAStyleInboundDM, []string{"dm me", "send me a message", "message me"}},
	{model.CTAStyleCommunity, []string{"join the community", "join my community", "join the discord", "become a member"}},
	{model.CTAStyleTransactional, []string{"buy now", "get instant access", "download now", "purchase", "add to cart", "get the"}},
}

func classifyCTA(snap *Snapshot) model.CTAStyle {
	corpus := strings.ToLower(snap.Text)
	for _, card := range snap.OfferCards {
		corpus += " " + strings.ToLower(card.Title+" "+card.CTA)
	}

	for _, rule := range ctaRules {
		for _, term := range rule.terms {
			if strings.Contains(corpus, term) {
				return rule.style
			}
		}
	}
	return model.CTAStyleGeneric
}

// outboundSocials drops analytics and first-party links.
func outboundSocials(links []string) []string {
	var out []string
	for _, link := range links {
		lower := strings.ToLower(link)
		excluded := false
		for _, host := range excludedSocialHosts {
			if strings.Contains(lower, host) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, link)
		}
	}
	return out
}

// Presence weights for the extraction confidence score. Hand-tuned.
const (
	weightName    = 0.15
	weightBio     = 0.12
	weightOffers  = 0.20
	weightPrices  = 0.12
	weightTypes   = 0.08
	weightSocials = 0.10
	weightHeader  = 0.08
	weightEmail   = 0.05
	bonusOffers   = 0.05 // 3 or more offers
	bonusPrices   = 0.05 // 2 or more prices
)

func confidence(p model.StanProfile) float64 {
	score := 0.0
	if p.ProfileName != "" {
		score += weightName
	}
	if p.Bio != "" {
		score += weightBio
	}
	if len(p.Offers) > 0 {
		score += weightOffers
	}
	if len(p.PricePoints) > 0 {
		score += weightPrices
	}
	if len(p.ProductTypes) > 0 {
		score += weightTypes
	}
	if len(p.OutboundSocials) > 0 {
		score += weightSocials
	}
	if p.HeaderImageURL != "" {
		score += weightHeader
	}
	if p.Email != "" {
		score += weightEmail
	}
	if len(p.Offers) >= 3 {
		score += bonusOffers
	}
	if len(p.PricePoints) >= 2 {
		score += bonusPrices
	}
	if score > 1 {
		score = 1
	}
	return score
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
