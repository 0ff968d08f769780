package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/reachwell/creator-scout/internal/model"
)

const (
	// flattenMaxStrings caps how many strings are mined from a raw payload.
	flattenMaxStrings = 120
	flattenMaxDepth   = 4
)

// SearchableText joins title, snippet, and the recursively flattened raw
// payload into one searchable blob.
func SearchableText(title, snippet string, raw map[string]any) string {
	parts := []string{title, snippet}
	parts = append(parts, FlattenStrings(raw)...)
	return strings.Join(parts, "\n")
}

// FlattenStrings walks a decoded JSON payload collecting string leaves,
// capped at flattenMaxStrings values and flattenMaxDepth levels.
func FlattenStrings(v any) []string {
	var out []string
	flatten(v, 0, &out)
	return out
}

func flatten(v any, depth int, out *[]string) {
	if depth > flattenMaxDepth || len(*out) >= flattenMaxStrings {
		return
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			*out = append(*out, t)
		}
	case []any:
		for _, e := range t {
			if len(*out) >= flattenMaxStrings {
				return
			}
			flatten(e, depth+1, out)
		}
	case map[string]any:
		for _, e := range t {
			if len(*out) >= flattenMaxStrings {
				return
			}
			flatten(e, depth+1, out)
		}
	}
}

var (
	parenHandleRe   = regexp.MustCompile(`\(@([A-Za-z0-9_.\-]{2,64})\)`)
	mentionHandleRe = regexp.MustCompile(`(?i)\b(instagram|tiktok|youtube|twitter|linkedin|x)\b\s*[·•:|\-]\s*@?([A-Za-z0-9_.\-]{2,64})`)
)

// mentionPlatforms maps mention keywords to platforms.
var mentionPlatforms = map[string]model.Platform{
	"instagram": model.PlatformInstagram,
	"tiktok":    model.PlatformTikTok,
	"youtube":   model.PlatformYouTube,
	"twitter":   model.PlatformX,
	"x":         model.PlatformX,
	"linkedin":  model.PlatformLinkedIn,
}

// HandleFromMentions recovers a handle from parenthetical "(@handle)" or
// "platform · handle" mentions anywhere in the text.
func HandleFromMentions(text string) (string, model.Platform, bool) {
	if m := parenHandleRe.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], "."), model.PlatformUnknown, true
	}
	if m := mentionHandleRe.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[2], "."), mentionPlatforms[strings.ToLower(m[1])], true
	}
	return "", model.PlatformUnknown, false
}

var stanSlugRe = regexp.MustCompile(`(?i)stan\.store/([A-Za-z0-9_.\-]+)`)

// StanSlugFromText extracts the first stan.store slug mentioned in text,
// trimmed of surrounding punctuation and lower-cased.
func StanSlugFromText(text string) (string, bool) {
	m := stanSlugRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	slug := strings.ToLower(strings.Trim(m[1], "._-"))
	if slug == "" {
		return "", false
	}
	return slug, true
}

var followerRe = regexp.MustCompile(`(?i)([\d][\d,]*(?:\.\d+)?)\s*([kmb])?\s*(followers?|subscribers?|subs)\b`)

// ParseFollowerCount parses follower/subscriber counts like "12.3K followers"
// or "4,500 subscribers", applying k/m/b suffix multipliers.
func ParseFollowerCount(text string) (int64, bool) {
	m := followerRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	num := strings.ReplaceAll(m[1], ",", "")
	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		val *= 1_000
	case "m":
		val *= 1_000_000
	case "b":
		val *= 1_000_000_000
	}

	return int64(val), true
}
