package crawl

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/normalize"
)

// Options controls one crawl run.
type Options struct {
	AgentIDs           []string
	MaxResultsPerQuery int
	MaxResultsPerAgent int
	DelayMin           time.Duration
	DelayMax           time.Duration
	QueryTimeout       time.Duration
	RelaxedMatching    bool
}

// Result is one filtered row attributed to the agent and query that found it.
type Result struct {
	AgentID  string         `json:"agent_id"`
	Platform model.Platform `json:"platform"`
	Query    string         `json:"query"`
	Position int            `json:"position"`
	Title    string         `json:"title"`
	Snippet  string         `json:"snippet"`
	URL      string         `json:"url"`
	Raw      []byte         `json:"raw,omitempty"`
}

// AgentSummary reports one agent's outcome.
type AgentSummary struct {
	ID             string   `json:"id"`
	ResultsFound   int      `json:"results_found"`
	UniqueURLs     int      `json:"unique_urls"`
	BlockedQueries int      `json:"blocked_queries"`
	Diagnostics    []string `json:"diagnostics,omitempty"`
}

// Report is the structured outcome of a crawl run. Individual query failures
// surface as diagnostics, not as a run failure.
type Report struct {
	OK        bool           `json:"ok"`
	AgentsRun []AgentSummary `json:"agents_run"`
	Results   []Result       `json:"results"`
}

// Crawler executes agents sequentially against a resolved engine plan.
type Crawler struct {
	registry []Agent
	engines  map[string]Engine

	// sleep and jitter are injectable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(min, max time.Duration) time.Duration
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithRegistry replaces the built-in agent registry.
func WithRegistry(agents []Agent) CrawlerOption {
	return func(c *Crawler) { c.registry = agents }
}

// WithSleep replaces the inter-query delay function.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) CrawlerOption {
	return func(c *Crawler) { c.sleep = sleep }
}

// NewCrawler creates a Crawler over the given engines, keyed by engine name.
func NewCrawler(engines map[string]Engine, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		registry: DefaultAgents(),
		engines:  engines,
		sleep:    sleepCtx,
		jitter: func(min, max time.Duration) time.Duration {
			if max <= min {
				return min
			}
			return min + time.Duration(rand.Int63n(int64(max-min)))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the selected agents sequentially. Only configuration problems
// (unknown agent, missing engine) fail the run.
func (c *Crawler) Run(ctx context.Context, plan EnginePlan, opts Options) (*Report, error) {
	agents, err := SelectAgents(c.registry, opts.AgentIDs)
	if err != nil {
		return nil, err
	}
	primary, ok := c.engines[plan.Primary]
	if !ok {
		return nil, eris.Errorf("crawl: engine %q not configured", plan.Primary)
	}
	var fallback Engine
	if plan.Fallback != "" {
		fallback = c.engines[plan.Fallback]
	}

	report := &Report{OK: true}
	firstQuery := true

	for _, agent := range agents {
		summary := AgentSummary{ID: agent.ID}
		seen := make(map[string]bool)

		agentCap := opts.MaxResultsPerAgent
		if agent.MaxResults > 0 {
			agentCap = agent.MaxResults
		}

		for _, query := range agent.Queries {
			if agentCap > 0 && summary.ResultsFound >= agentCap {
				break
			}

			// Politeness delay between queries, never before the first.
			if !firstQuery {
				if err := c.sleep(ctx, c.jitter(opts.DelayMin, opts.DelayMax)); err != nil {
					return nil, eris.Wrap(err, "crawl: canceled")
				}
			}
			firstQuery = false

			rows, blocked, err := c.searchWithFallback(ctx, primary, fallback, query, opts.MaxResultsPerQuery, opts.QueryTimeout)
			if blocked {
				summary.BlockedQueries++
			}
			if err != nil {
				diag := fmt.Sprintf("query %q: %v", query, err)
				summary.Diagnostics = append(summary.Diagnostics, diag)
				zap.L().Warn("crawl query failed",
					zap.String("agent", agent.ID),
					zap.String("query", query),
					zap.Error(err),
				)
				continue
			}

			kept := 0
			for _, row := range rows {
				if opts.MaxResultsPerQuery > 0 && kept >= opts.MaxResultsPerQuery {
					break
				}
				if agentCap > 0 && summary.ResultsFound >= agentCap {
					break
				}

				canonical, ok := normalize.CanonicalURL(row.URL, "")
				if !ok || seen[canonical] {
					continue
				}
				searchable := canonical + " " + row.Title + " " + row.Snippet
				if !agent.Matches(canonical, searchable, opts.RelaxedMatching) {
					continue
				}

				seen[canonical] = true
				kept++
				summary.ResultsFound++
				report.Results = append(report.Results, Result{
					AgentID:  agent.ID,
					Platform: agent.Platform,
					Query:    query,
					Position: row.Position,
					Title:    row.Title,
					Snippet:  row.Snippet,
					URL:      canonical,
					Raw:      row.Raw,
				})
			}
		}

		summary.UniqueURLs = len(seen)
		report.AgentsRun = append(report.AgentsRun, summary)
		zap.L().Info("crawl agent done",
			zap.String("agent", agent.ID),
			zap.Int("results", summary.ResultsFound),
			zap.Int("blocked_queries", summary.BlockedQueries),
		)
	}

	return report, nil
}

// searchWithFallback runs one query on the primary engine and retries on the
// fallback when the primary is blocked or returns nothing.
func (c *Crawler) searchWithFallback(ctx context.Context, primary, fallback Engine, query string, num int, timeout time.Duration) ([]Row, bool, error) {
	rows, err := c.searchOne(ctx, primary, query, num, timeout)
	blocked := errors.Is(err, ErrBlocked)

	if fallback == nil {
		return rows, blocked, err
	}
	if err == nil && len(rows) > 0 {
		return rows, false, nil
	}

	zap.L().Debug("crawl falling back",
		zap.String("from", primary.Name()),
		zap.String("to", fallback.Name()),
		zap.String("query", query),
		zap.Bool("blocked", blocked),
	)
	rows, err = c.searchOne(ctx, fallback, query, num, timeout)
	return rows, blocked, err
}

func (c *Crawler) searchOne(ctx context.Context, engine Engine, query string, num int, timeout time.Duration) ([]Row, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return engine.Search(ctx, query, num)
}
