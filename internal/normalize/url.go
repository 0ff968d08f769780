package normalize

import (
	"net/url"
	"path"
	"strings"
)

// trackingParams are query parameters stripped from canonical URLs.
var trackingParams = map[string]bool{
	"gclid": true, "fbclid": true, "msclkid": true, "igsh": true,
	"igshid": true, "ref": true, "ref_src": true, "ref_url": true,
	"si": true, "feature": true, "mc_cid": true, "mc_eid": true,
	"source": true, "s": true,
}

// skippedExtensions are file extensions that never identify a page.
var skippedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".svg": true, ".ico": true, ".pdf": true, ".zip": true, ".gz": true,
	".mp4": true, ".mp3": true, ".mov": true, ".avi": true, ".webm": true,
	".css": true, ".js": true, ".woff": true, ".woff2": true,
}

// searchEngineHosts are hosts internal to search engines, never results.
var searchEngineHosts = []string{
	"google.com", "duckduckgo.com", "bing.com", "serpapi.com",
	"googleusercontent.com", "gstatic.com", "googleadservices.com",
}

// CanonicalURL resolves href against base, strips tracking parameters, and
// rejects non-page URLs (media/binary extensions, search-engine-internal
// hosts, non-http schemes).
func CanonicalURL(href, base string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != "" && !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		u = b.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if IsSearchEngineHost(host) {
		return "", false
	}

	if ext := strings.ToLower(path.Ext(u.Path)); skippedExtensions[ext] {
		return "", false
	}

	// Strip tracking parameters, keep the rest in stable order.
	q := u.Query()
	for k := range q {
		if trackingParams[k] || strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = "https"

	return u.String(), true
}

// IsSearchEngineHost reports whether host belongs to a search engine.
func IsSearchEngineHost(host string) bool {
	for _, h := range searchEngineHosts {
		if HostMatches(host, h) {
			return true
		}
	}
	return false
}

// IsSocialHost reports whether host belongs to a known social platform or
// the stan.store storefront.
func IsSocialHost(host string) bool {
	if HostMatches(host, "stan.store") {
		return true
	}
	for h := range platformHosts {
		if HostMatches(host, h) {
			return true
		}
	}
	return false
}
