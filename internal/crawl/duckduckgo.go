package crawl

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/internal/browser"
)

var (
	ddgResultRe  = regexp.MustCompile(`(?is)<a[^>]*class="result__a"[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	ddgSnippetRe = regexp.MustCompile(`(?is)<a[^>]*class="result__snippet"[^>]*>(.*?)</a>`)
)

// duckduckgoEngine scrapes the DuckDuckGo HTML endpoint through a headless
// browser. Used as the fallback when Google serves a block page.
type duckduckgoEngine struct {
	fetcher browser.Fetcher
}

// NewDuckDuckGoEngine creates the scripted-browser DuckDuckGo engine.
func NewDuckDuckGoEngine(fetcher browser.Fetcher) Engine {
	return &duckduckgoEngine{fetcher: fetcher}
}

func (e *duckduckgoEngine) Name() string { return EngineDuckDuckGo }

func (e *duckduckgoEngine) Search(ctx context.Context, query string, num int) ([]Row, error) {
	searchURL := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)

	html, err := e.fetcher.HTML(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrapf(err, "crawl: duckduckgo query %q", query)
	}
	if IsBlockPage(html) {
		return nil, ErrBlocked
	}

	matches := ddgResultRe.FindAllStringSubmatch(html, -1)
	snippets := ddgSnippetRe.FindAllStringSubmatch(html, -1)

	rows := make([]Row, 0, len(matches))
	for i, m := range matches {
		if num > 0 && len(rows) >= num {
			break
		}
		target := resolveDDGRedirect(m[1])
		if target == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) {
			snippet = stripTags(snippets[i][1])
		}
		rows = append(rows, Row{
			Position: len(rows) + 1,
			Title:    stripTags(m[2]),
			Snippet:  snippet,
			URL:      target,
		})
	}
	return rows, nil
}

// resolveDDGRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveDDGRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}
