package crawl

import (
	"html"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrBlocked signals that the engine served an anti-bot page instead of
// results. The crawler treats it as a cue to try the fallback engine.
var ErrBlocked = eris.New("crawl: search engine served a block page")

var (
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// stripTags flattens an HTML fragment to plain text.
func stripTags(fragment string) string {
	text := tagRe.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
