package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/internal/browser"
	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/store"
	"github.com/reachwell/creator-scout/pkg/serpapi"
)

// openStore connects to the configured backend (postgres or sqlite).
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// crawlSetup owns the engines and, when a scripted engine is in the plan,
// the shared browser session behind them.
type crawlSetup struct {
	plan    crawl.EnginePlan
	engines map[string]crawl.Engine
	session *browser.Session
}

func (c *crawlSetup) Close() {
	if c.session != nil {
		_ = c.session.Close()
	}
}

// newCrawlSetup resolves the engine plan and builds only the engines it
// needs. The browser starts lazily on first fetch.
func newCrawlSetup(engineChoice string) (*crawlSetup, error) {
	if engineChoice == "" {
		engineChoice = cfg.Crawl.Engine
	}
	plan, err := crawl.ResolveEngine(engineChoice, cfg.SerpAPI.Key != "")
	if err != nil {
		return nil, err
	}

	setup := &crawlSetup{plan: plan, engines: make(map[string]crawl.Engine)}
	if plan.NeedsBrowser() {
		setup.session = newBrowserSession(time.Duration(cfg.Crawl.QueryTimeoutSecs) * time.Second)
		setup.engines[crawl.EngineGoogle] = crawl.NewGoogleEngine(setup.session)
		setup.engines[crawl.EngineDuckDuckGo] = crawl.NewDuckDuckGoEngine(setup.session)
	}
	if plan.Primary == crawl.EngineSerpAPI {
		client := serpapi.NewClient(cfg.SerpAPI.Key,
			serpapi.WithBaseURL(cfg.SerpAPI.BaseURL),
			serpapi.WithRateLimit(cfg.SerpAPI.RatePerSecond),
		)
		setup.engines[crawl.EngineSerpAPI] = crawl.NewSerpAPIEngine(client)
	}
	return setup, nil
}

// newBrowserSession builds a session on the configured browser binary with
// the given per-fetch timeout.
func newBrowserSession(timeout time.Duration) *browser.Session {
	return browser.NewSession(
		browser.WithExecPath(cfg.Crawl.Browser),
		browser.WithTimeout(timeout),
	)
}

// crawlOptions translates config plus per-invocation overrides.
func crawlOptions(agentIDs []string, perQuery, perAgent int, relaxed bool) crawl.Options {
	opts := crawl.Options{
		AgentIDs:           agentIDs,
		MaxResultsPerQuery: cfg.Crawl.MaxResultsPerQuery,
		MaxResultsPerAgent: cfg.Crawl.MaxResultsPerAgent,
		DelayMin:           time.Duration(cfg.Crawl.DelayMinMs) * time.Millisecond,
		DelayMax:           time.Duration(cfg.Crawl.DelayMaxMs) * time.Millisecond,
		QueryTimeout:       time.Duration(cfg.Crawl.QueryTimeoutSecs) * time.Second,
		RelaxedMatching:    relaxed || cfg.Crawl.RelaxedMatching,
	}
	if perQuery > 0 {
		opts.MaxResultsPerQuery = perQuery
	}
	if perAgent > 0 {
		opts.MaxResultsPerAgent = perAgent
	}
	return opts
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
