package identity

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/reachwell/creator-scout/internal/normalize"
)

var (
	embeddedURLRe = regexp.MustCompile(`https?://[^\s"'<>()\[\]]+`)
	bareDomainRe  = regexp.MustCompile(`(?i)\b(?:[a-z0-9][a-z0-9-]{0,62}\.)+[a-z]{2,12}\b`)
)

// CrossLinks are anchors mined from an account's searchable text rather than
// its own URL: a stan slug mentioned anywhere, and the first personal domain
// found in an embedded URL or bare-domain token.
type CrossLinks struct {
	StanSlug string
	Domain   string
}

// MineCrossLinks scans text for cross-link anchors. The domain heuristic
// takes the first non-social, non-search-engine host; an unrelated domain
// mentioned incidentally can win, which trades precision for recall.
func MineCrossLinks(text string) CrossLinks {
	var links CrossLinks

	if slug, ok := normalize.StanSlugFromText(text); ok {
		links.StanSlug = slug
	}

	for _, match := range embeddedURLRe.FindAllString(text, -1) {
		u, err := url.Parse(strings.TrimRight(match, ".,;:!?"))
		if err != nil {
			continue
		}
		if domain := personalDomain(u.Hostname()); domain != "" {
			links.Domain = domain
			return links
		}
	}

	for _, match := range bareDomainRe.FindAllString(text, -1) {
		if domain := personalDomain(match); domain != "" {
			links.Domain = domain
			return links
		}
	}

	return links
}

// personalDomain normalizes a candidate host and rejects hosts that can
// never anchor an identity.
func personalDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	if normalize.IsSocialHost(host) || normalize.IsSearchEngineHost(host) {
		return ""
	}
	// Link-in-bio and URL-shortener hosts are shared infrastructure.
	for _, shared := range sharedHosts {
		if normalize.HostMatches(host, shared) {
			return ""
		}
	}
	return host
}

var sharedHosts = []string{
	"linktr.ee", "beacons.ai", "bit.ly", "t.co", "tinyurl.com",
	"lnk.bio", "linkin.bio", "wa.me", "discord.gg", "t.me",
}
