// Package crawl runs platform-targeted search agents against one or more
// search backends and returns filtered raw result rows for ingestion.
package crawl

import (
	"context"

	"github.com/rotisserie/eris"
)

// Row is one search result before agent filtering.
type Row struct {
	Position int
	Title    string
	Snippet  string
	URL      string
	Raw      []byte
}

// Engine executes one search query against a backend.
type Engine interface {
	Name() string
	Search(ctx context.Context, query string, num int) ([]Row, error)
}

// EnginePlan is the outcome of engine selection: a primary engine name and an
// optional fallback used when the primary returns nothing or is blocked.
type EnginePlan struct {
	Primary  string
	Fallback string
}

// Engine names accepted by ResolveEngine.
const (
	EngineAuto       = "auto"
	EngineSerpAPI    = "serpapi"
	EngineGoogle     = "google"
	EngineDuckDuckGo = "duckduckgo"
)

// ResolveEngine maps an engine choice to a concrete plan. "auto" prefers
// serpapi when a key is configured and otherwise uses google with a
// duckduckgo fallback. Selecting "serpapi" without a key is a configuration
// error, raised before any network call.
func ResolveEngine(choice string, hasSerpAPIKey bool) (EnginePlan, error) {
	switch choice {
	case EngineAuto, "":
		if hasSerpAPIKey {
			return EnginePlan{Primary: EngineSerpAPI}, nil
		}
		return EnginePlan{Primary: EngineGoogle, Fallback: EngineDuckDuckGo}, nil
	case EngineSerpAPI:
		if !hasSerpAPIKey {
			return EnginePlan{}, eris.New("crawl: serpapi engine selected but no key configured")
		}
		return EnginePlan{Primary: EngineSerpAPI}, nil
	case EngineGoogle:
		return EnginePlan{Primary: EngineGoogle, Fallback: EngineDuckDuckGo}, nil
	case EngineDuckDuckGo:
		return EnginePlan{Primary: EngineDuckDuckGo}, nil
	default:
		return EnginePlan{}, eris.Errorf("crawl: unknown engine %q", choice)
	}
}

// NeedsBrowser reports whether the plan requires a scripted browser session.
func (p EnginePlan) NeedsBrowser() bool {
	return p.Primary != EngineSerpAPI
}
