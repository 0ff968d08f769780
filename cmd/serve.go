package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/identity"
	"github.com/reachwell/creator-scout/internal/ingest"
	"github.com/reachwell/creator-scout/internal/server"
	"github.com/reachwell/creator-scout/internal/signals"
	"github.com/reachwell/creator-scout/internal/social"
	"github.com/reachwell/creator-scout/internal/stan"
	"github.com/reachwell/creator-scout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for the discovery pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// Started lazily on the first storefront fetch.
		session := newBrowserSession(time.Duration(cfg.Stan.TimeoutSecs) * time.Second)
		defer session.Close() //nolint:errcheck

		srv := server.New(server.Deps{
			Store:    st,
			Crawl:    crawlRunner(st),
			Ingest:   ingest.NewService(st),
			Resolver: identity.NewResolver(st),
			Stan: stan.NewEnricher(st, session,
				stan.WithMaxOffers(cfg.Stan.MaxOffers),
				stan.WithPageTimeout(time.Duration(cfg.Stan.TimeoutSecs)*time.Second),
			),
			Social:    social.NewEnricher(st, social.WithMaxConcurrent(cfg.Social.MaxConcurrent)),
			Extractor: signals.NewExtractor(st),
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Handler(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = httpSrv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// crawlRunner returns a CrawlFunc that builds a fresh engine setup per
// request, runs the agents, persists the rows, and tears the browser down on
// every exit path.
func crawlRunner(st store.Store) server.CrawlFunc {
	return func(ctx context.Context, req server.CrawlRequest) (*crawl.Report, error) {
		setup, err := newCrawlSetup(req.Engine)
		if err != nil {
			return nil, err
		}
		defer setup.Close()

		crawler := crawl.NewCrawler(setup.engines)
		report, err := crawler.Run(ctx, setup.plan,
			crawlOptions(req.AgentIDs, req.MaxResultsPerQuery, req.MaxResultsPerAgent, req.RelaxedMatching))
		if err != nil {
			return nil, err
		}

		if _, err := ingest.NewService(st).Ingest(ctx, ingest.Request{Results: report.Results}); err != nil {
			return nil, err
		}
		return report, nil
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
