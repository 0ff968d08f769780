// Package stan enriches creator identities from their stan.store storefront
// pages: offers, pricing, bio, outbound socials, and contact signals.
package stan

import (
	"encoding/json"
	"fmt"
	htmlpkg "html"
	"net/url"
	"regexp"
	"strings"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/normalize"
)

// Snapshot is the raw extraction from one storefront page, before any
// interpretation.
type Snapshot struct {
	Title           string
	MetaDescription string
	OGImage         string
	HeaderName      string
	HeaderBio       string
	SocialLinks     []string
	AnchorLinks     []string
	OfferCards      []model.OfferCard
	Text            string
}

var (
	titleRe       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe    = regexp.MustCompile(`(?is)<meta[^>]*name=["']description["'][^>]*content=["']([^"']*)["']`)
	metaDescRevRe = regexp.MustCompile(`(?is)<meta[^>]*content=["']([^"']*)["'][^>]*name=["']description["']`)
	ogImageRe     = regexp.MustCompile(`(?is)<meta[^>]*property=["']og:image["'][^>]*content=["']([^"']*)["']`)
	headerNameRe  = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	headerBioRe   = regexp.MustCompile(`(?is)<(?:p|div|span)[^>]*class=["'][^"']*bio[^"']*["'][^>]*>(.*?)</(?:p|div|span)>`)
	anchorRe      = regexp.MustCompile(`(?is)<a[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	calloutRe     = regexp.MustCompile(`(?is)<div[^>]*class=["'][^"']*(?:callout|product-card|store-item)[^"']*["'][^>]*>(.*?)</div>`)
	pillRe        = regexp.MustCompile(`(?is)<a[^>]*class=["'][^"']*pill[^"']*["'][^>]*href=["']([^"']*)["'][^>]*>(.*?)</a>`)
	blockTitleRe  = regexp.MustCompile(`(?is)<(?:h2|h3|h4|strong|span)[^>]*>(.*?)</(?:h2|h3|h4|strong|span)>`)
	stateBlobRe   = regexp.MustCompile(`(?is)<script[^>]*(?:id=["']__NEXT_DATA__["']|type=["']application/json["'])[^>]*>(.*?)</script>`)
	scriptRe      = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe       = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// moneyRe matches display prices like $49, $1,299.00.
var moneyRe = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)

// ParseSnapshot extracts structure from storefront markup. Offer cards are
// collected from callout blocks, pill links, and the embedded state blob,
// merged in that order and capped at maxOffers.
func ParseSnapshot(html string, maxOffers int) *Snapshot {
	if maxOffers <= 0 {
		maxOffers = 12
	}

	snap := &Snapshot{}

	if m := titleRe.FindStringSubmatch(html); m != nil {
		snap.Title = cleanFragment(m[1])
	}
	if m := metaDescRe.FindStringSubmatch(html); m != nil {
		snap.MetaDescription = cleanFragment(m[1])
	} else if m := metaDescRevRe.FindStringSubmatch(html); m != nil {
		snap.MetaDescription = cleanFragment(m[1])
	}
	if m := ogImageRe.FindStringSubmatch(html); m != nil {
		snap.OGImage = strings.TrimSpace(m[1])
	}
	if m := headerNameRe.FindStringSubmatch(html); m != nil {
		snap.HeaderName = cleanFragment(m[1])
	}
	if m := headerBioRe.FindStringSubmatch(html); m != nil {
		snap.HeaderBio = cleanFragment(m[1])
	}

	seenLinks := make(map[string]bool)
	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" || strings.HasPrefix(href, "#") || seenLinks[href] {
			continue
		}
		seenLinks[href] = true
		snap.AnchorLinks = append(snap.AnchorLinks, href)
		if u, err := url.Parse(href); err == nil && u.Host != "" {
			host := u.Hostname()
			if normalize.IsSocialHost(host) && !normalize.HostMatches(host, "stan.store") {
				snap.SocialLinks = append(snap.SocialLinks, href)
			}
		}
	}

	snap.OfferCards = mergeOffers(maxOffers,
		calloutOffers(html),
		pillOffers(html),
		stateBlobOffers(html),
	)

	snap.Text = pageText(html)
	return snap
}

// calloutOffers extracts offers from DOM callout/product-card blocks.
func calloutOffers(html string) []model.OfferCard {
	var offers []model.OfferCard
	for _, m := range calloutRe.FindAllStringSubmatch(html, -1) {
		block := m[1]
		title := ""
		if t := blockTitleRe.FindStringSubmatch(block); t != nil {
			title = cleanFragment(t[1])
		}
		if title == "" {
			continue
		}
		card := model.OfferCard{Title: title, Source: "callout"}
		if p := moneyRe.FindString(block); p != "" {
			card.Price = strings.ReplaceAll(p, " ", "")
		}
		offers = append(offers, card)
	}
	return offers
}

// pillOffers extracts offers from pill-style link rows.
func pillOffers(html string) []model.OfferCard {
	var offers []model.OfferCard
	for _, m := range pillRe.FindAllStringSubmatch(html, -1) {
		title := cleanFragment(m[2])
		if title == "" {
			continue
		}
		card := model.OfferCard{Title: title, SourceURL: strings.TrimSpace(m[1]), Source: "pill"}
		if p := moneyRe.FindString(title); p != "" {
			card.Price = strings.ReplaceAll(p, " ", "")
		}
		offers = append(offers, card)
	}
	return offers
}

// stateBlobOffers walks the embedded client-side state for product objects.
func stateBlobOffers(html string) []model.OfferCard {
	var offers []model.OfferCard
	for _, m := range stateBlobRe.FindAllStringSubmatch(html, -1) {
		var state any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &state); err != nil {
			continue
		}
		collectProducts(state, 0, &offers)
	}
	return offers
}

const stateWalkMaxDepth = 12

// collectProducts finds maps that look like products: a title plus at least
// one of price/description/type.
func collectProducts(v any, depth int, out *[]model.OfferCard) {
	if depth > stateWalkMaxDepth {
		return
	}
	switch val := v.(type) {
	case map[string]any:
		title, _ := val["title"].(string)
		if title == "" {
			title, _ = val["name"].(string)
		}
		if title != "" && hasProductShape(val) {
			card := model.OfferCard{Title: strings.TrimSpace(title), Source: "state"}
			if d, ok := val["description"].(string); ok {
				card.Description = strings.TrimSpace(d)
			}
			card.Price = statePrice(val)
			if img, ok := val["image"].(string); ok {
				card.ImageURL = img
			}
			if link, ok := val["link"].(string); ok {
				card.SourceURL = link
			} else if link, ok := val["url"].(string); ok {
				card.SourceURL = link
			}
			if typ, ok := val["type"].(string); ok {
				card.CTA = strings.TrimSpace(typ)
			}
			*out = append(*out, card)
		}
		for _, child := range val {
			collectProducts(child, depth+1, out)
		}
	case []any:
		for _, child := range val {
			collectProducts(child, depth+1, out)
		}
	}
}

func hasProductShape(m map[string]any) bool {
	for _, key := range []string{"price", "price_cents", "amount", "description", "type"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func statePrice(m map[string]any) string {
	switch p := m["price"].(type) {
	case string:
		return strings.TrimSpace(p)
	case float64:
		return fmt.Sprintf("$%g", p)
	}
	if cents, ok := m["price_cents"].(float64); ok {
		return fmt.Sprintf("$%.2f", cents/100)
	}
	return ""
}

// mergeOffers concatenates sources, dropping duplicate titles, capped.
func mergeOffers(max int, sources ...[]model.OfferCard) []model.OfferCard {
	var merged []model.OfferCard
	seen := make(map[string]bool)
	for _, cards := range sources {
		for _, card := range cards {
			key := strings.ToLower(card.Title)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, card)
			if len(merged) >= max {
				return merged
			}
		}
	}
	return merged
}

// pageText flattens markup to visible text.
func pageText(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = htmlpkg.UnescapeString(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

func cleanFragment(fragment string) string {
	text := tagRe.ReplaceAllString(fragment, " ")
	text = htmlpkg.UnescapeString(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
