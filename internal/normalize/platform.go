// Package normalize canonicalizes raw search results into platform profiles,
// handles, storefront slugs, and follower estimates. Every function here is
// pure: text in, value out, no I/O.
package normalize

import (
	"strings"

	"github.com/reachwell/creator-scout/internal/model"
)

// platformHosts maps registrable hosts to platforms. Subdomains of these
// hosts match too (www.instagram.com, m.youtube.com).
var platformHosts = map[string]model.Platform{
	"x.com":         model.PlatformX,
	"twitter.com":   model.PlatformX,
	"instagram.com": model.PlatformInstagram,
	"linkedin.com":  model.PlatformLinkedIn,
	"tiktok.com":    model.PlatformTikTok,
	"youtube.com":   model.PlatformYouTube,
	"youtu.be":      model.PlatformYouTube,
}

// canonicalHost is the host used in normalized profile URLs per platform.
var canonicalHost = map[model.Platform]string{
	model.PlatformX:         "x.com",
	model.PlatformInstagram: "instagram.com",
	model.PlatformLinkedIn:  "linkedin.com",
	model.PlatformTikTok:    "tiktok.com",
	model.PlatformYouTube:   "youtube.com",
}

// DetectPlatform identifies the platform for a hostname via exact or
// subdomain match.
func DetectPlatform(host string) model.Platform {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for h, p := range platformHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return p
		}
	}
	return model.PlatformUnknown
}

// HostMatches reports whether host equals allowed or is a subdomain of it.
func HostMatches(host, allowed string) bool {
	host = strings.ToLower(host)
	allowed = strings.ToLower(allowed)
	return host == allowed || strings.HasSuffix(host, "."+allowed)
}
