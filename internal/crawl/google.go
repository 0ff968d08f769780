package crawl

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/internal/browser"
)

var (
	googleResultRe  = regexp.MustCompile(`(?is)<a[^>]*href="(https?://[^"]+)"[^>]*>\s*(?:<br[^>]*>\s*)?<h3[^>]*>(.*?)</h3>`)
	googleSnippetRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*VwiC3b[^"]*"[^>]*>(.*?)</div>`)
)

// googleEngine scrapes Google result pages through a headless browser.
type googleEngine struct {
	fetcher browser.Fetcher
}

// NewGoogleEngine creates the scripted-browser Google engine.
func NewGoogleEngine(fetcher browser.Fetcher) Engine {
	return &googleEngine{fetcher: fetcher}
}

func (e *googleEngine) Name() string { return EngineGoogle }

func (e *googleEngine) Search(ctx context.Context, query string, num int) ([]Row, error) {
	// num <= 0 means no cap; still ask Google for a full page.
	pageSize := num
	if pageSize <= 0 {
		pageSize = 20
	}
	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(query) +
		"&num=" + strconv.Itoa(pageSize) + "&hl=en"

	html, err := e.fetcher.HTML(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrapf(err, "crawl: google query %q", query)
	}
	if IsBlockPage(html) {
		return nil, ErrBlocked
	}

	matches := googleResultRe.FindAllStringSubmatch(html, -1)
	snippets := googleSnippetRe.FindAllStringSubmatch(html, -1)

	rows := make([]Row, 0, len(matches))
	for i, m := range matches {
		if num > 0 && len(rows) >= num {
			break
		}
		snippet := ""
		if i < len(snippets) {
			snippet = stripTags(snippets[i][1])
		}
		rows = append(rows, Row{
			Position: len(rows) + 1,
			Title:    stripTags(m[2]),
			Snippet:  snippet,
			URL:      m[1],
		})
	}
	return rows, nil
}
