package normalize

import (
	"net/url"
	"strings"

	"github.com/reachwell/creator-scout/internal/model"
)

// Normalized is the canonical form of one raw search result.
type Normalized struct {
	Platform         model.Platform
	ProfileURL       string
	Handle           string
	StanURL          string
	StanSlug         string
	FollowerEstimate *int64
}

// Normalize canonicalizes a raw result row. It returns nil when the source
// URL cannot be parsed at all; a row whose URL is valid but not a profile
// still normalizes (platform may be unknown, handle may come from text).
func Normalize(sourceURL, title, snippet string, raw map[string]any) *Normalized {
	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || u.Host == "" {
		return nil
	}

	n := &Normalized{Platform: DetectPlatform(u.Hostname())}

	if n.Platform != model.PlatformUnknown {
		if path, handle, ok := canonicalProfilePath(n.Platform, u); ok {
			n.ProfileURL = "https://" + canonicalHost[n.Platform] + path
			n.Handle = handle
		}
	}

	// Searchable text: title, snippet, and the flattened raw payload.
	text := SearchableText(title, snippet, raw)

	if n.Handle == "" {
		if handle, platform, ok := HandleFromMentions(text); ok {
			n.Handle = handle
			if n.Platform == model.PlatformUnknown && platform != model.PlatformUnknown {
				n.Platform = platform
			}
		}
	}

	// A stan slug on the URL itself wins over slugs mentioned in text.
	if slug, ok := StanSlugFromText(sourceURL); ok {
		n.StanSlug = slug
	} else if slug, ok := StanSlugFromText(text); ok {
		n.StanSlug = slug
	}
	if n.StanSlug != "" {
		n.StanURL = "https://stan.store/" + n.StanSlug
	}

	if count, ok := ParseFollowerCount(text); ok {
		n.FollowerEstimate = &count
	}

	return n
}

// canonicalProfilePath rewrites a platform URL path to its canonical profile
// form. Returns ok=false for non-profile paths.
func canonicalProfilePath(platform model.Platform, u *url.URL) (string, string, bool) {
	segs := pathSegments(u.Path)

	switch platform {
	case model.PlatformX:
		if len(segs) == 0 {
			return "", "", false
		}
		handle := strings.TrimPrefix(segs[0], "@")
		if !validHandle(handle) || xReserved[strings.ToLower(handle)] {
			return "", "", false
		}
		// Deeper paths (/user/status/123) still identify the profile.
		return "/" + handle, handle, true

	case model.PlatformInstagram:
		if len(segs) == 0 {
			return "", "", false
		}
		first := strings.ToLower(segs[0])
		if igReserved[first] {
			return "", "", false
		}
		handle := strings.TrimPrefix(segs[0], "@")
		if !validHandle(handle) {
			return "", "", false
		}
		return "/" + handle, handle, true

	case model.PlatformLinkedIn:
		if len(segs) < 2 {
			return "", "", false
		}
		kind := strings.ToLower(segs[0])
		if kind != "in" && kind != "company" {
			return "", "", false
		}
		id := segs[1]
		if !validHandle(id) {
			return "", "", false
		}
		return "/" + kind + "/" + id, id, true

	case model.PlatformTikTok:
		if len(segs) == 0 {
			return "", "", false
		}
		if !strings.HasPrefix(segs[0], "@") {
			return "", "", false
		}
		handle := strings.TrimPrefix(segs[0], "@")
		if !validHandle(handle) {
			return "", "", false
		}
		return "/@" + handle, handle, true

	case model.PlatformYouTube:
		// Short links identify a video; keep the watch URL, no handle.
		if strings.EqualFold(u.Hostname(), "youtu.be") || strings.HasSuffix(strings.ToLower(u.Hostname()), ".youtu.be") {
			if len(segs) == 0 {
				return "", "", false
			}
			return "/watch?v=" + segs[0], "", true
		}
		if len(segs) == 0 {
			return "", "", false
		}
		switch strings.ToLower(segs[0]) {
		case "watch":
			v := u.Query().Get("v")
			if v == "" {
				return "", "", false
			}
			return "/watch?v=" + v, "", true
		case "channel", "c", "user":
			if len(segs) < 2 {
				return "", "", false
			}
			handle := ""
			if strings.ToLower(segs[0]) != "channel" {
				handle = segs[1]
			}
			return "/" + strings.ToLower(segs[0]) + "/" + segs[1], handle, true
		default:
			if strings.HasPrefix(segs[0], "@") {
				handle := strings.TrimPrefix(segs[0], "@")
				if !validHandle(handle) {
					return "", "", false
				}
				return "/@" + handle, handle, true
			}
			return "", "", false
		}
	}

	return "", "", false
}

// xReserved lists x.com paths that are not profiles.
var xReserved = map[string]bool{
	"home": true, "search": true, "explore": true, "notifications": true,
	"messages": true, "settings": true, "i": true, "intent": true,
	"hashtag": true, "share": true, "login": true, "signup": true,
}

// igReserved lists instagram.com paths that are not profiles.
var igReserved = map[string]bool{
	"p": true, "explore": true, "reel": true, "reels": true,
	"stories": true, "tv": true, "accounts": true, "direct": true,
}

func pathSegments(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func validHandle(h string) bool {
	if len(h) < 2 || len(h) > 64 {
		return false
	}
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}
