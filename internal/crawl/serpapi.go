package crawl

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/pkg/serpapi"
)

// serpapiEngine runs queries through the SerpAPI HTTP backend.
type serpapiEngine struct {
	client serpapi.Client
}

// NewSerpAPIEngine wraps a SerpAPI client as a search engine.
func NewSerpAPIEngine(client serpapi.Client) Engine {
	return &serpapiEngine{client: client}
}

func (e *serpapiEngine) Name() string { return EngineSerpAPI }

func (e *serpapiEngine) Search(ctx context.Context, query string, num int) ([]Row, error) {
	// num <= 0 means no cap; keep the client's default page size.
	var opts []serpapi.SearchOption
	if num > 0 {
		opts = append(opts, serpapi.WithNum(num))
	}
	resp, err := e.client.Search(ctx, query, opts...)
	if err != nil {
		return nil, eris.Wrapf(err, "crawl: serpapi query %q", query)
	}

	rows := make([]Row, 0, len(resp.OrganicResults))
	for i, r := range resp.OrganicResults {
		position := r.Position
		if position == 0 {
			position = i + 1
		}
		raw, _ := json.Marshal(r)
		rows = append(rows, Row{
			Position: position,
			Title:    r.Title,
			Snippet:  r.Snippet,
			URL:      r.Link,
			Raw:      raw,
		})
	}
	return rows, nil
}
