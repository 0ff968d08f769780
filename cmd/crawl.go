package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/ingest"
)

var (
	crawlAgents     []string
	crawlEngine     string
	crawlPerQuery   int
	crawlPerAgent   int
	crawlRelaxed    bool
	crawlRunID      string
	crawlIngestFlag bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run crawl agents against the configured search engine",
	Long: `Executes platform-targeted search queries and prints the filtered
results as JSON. With --ingest the results are also normalized and persisted
into a discovery run.

Examples:
  # Run every agent with the auto-selected engine
  creator-scout crawl

  # Run two agents through DuckDuckGo and persist the results
  creator-scout crawl --agents instagram-stan,tiktok-stan --engine duckduckgo --ingest`,
	RunE: runCrawl,
}

func init() {
	f := crawlCmd.Flags()
	f.StringSliceVar(&crawlAgents, "agents", nil, "agent ids to run (default all)")
	f.StringVar(&crawlEngine, "engine", "", "search engine: auto, serpapi, google, duckduckgo (default from config)")
	f.IntVar(&crawlPerQuery, "max-per-query", 0, "max results per query (overrides config)")
	f.IntVar(&crawlPerAgent, "max-per-agent", 0, "max results per agent (overrides config)")
	f.BoolVar(&crawlRelaxed, "relaxed", false, "skip required-term matching")
	f.BoolVar(&crawlIngestFlag, "ingest", false, "persist results into a discovery run")
	f.StringVar(&crawlRunID, "run", "", "discovery run id for --ingest (generated if empty)")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setup, err := newCrawlSetup(crawlEngine)
	if err != nil {
		return err
	}
	defer setup.Close()

	crawler := crawl.NewCrawler(setup.engines)
	report, err := crawler.Run(ctx, setup.plan, crawlOptions(crawlAgents, crawlPerQuery, crawlPerAgent, crawlRelaxed))
	if err != nil {
		return err
	}

	if !crawlIngestFlag {
		return printJSON(report)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	resp, err := ingest.NewService(st).Ingest(ctx, ingest.Request{
		DiscoveryRunID: crawlRunID,
		Results:        report.Results,
	})
	if err != nil {
		return err
	}
	zap.L().Info("crawl ingested",
		zap.String("run_id", resp.DiscoveryRunID),
		zap.Int64("inserted", resp.Inserted),
	)
	return printJSON(map[string]any{"crawl": report.AgentsRun, "ingest": resp})
}
