package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reachwell/creator-scout/internal/social"
	"github.com/reachwell/creator-scout/internal/stan"
	"github.com/reachwell/creator-scout/internal/store"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich resolved identities with storefront and social signals",
}

var (
	enrichStanRunID    string
	enrichStanIdentity int64
	enrichStanSlug     string
	enrichStanLimit    int
	enrichStanForce    bool
	enrichStanTimeout  int
)

var enrichStanCmd = &cobra.Command{
	Use:   "stan",
	Short: "Scrape storefront pages for identities with a stan slug",
	Long: `Launches a headless browser, navigates each selected identity's
stan.store page, and extracts offers, pricing, bio, outbound socials, and a
CTA style. Identities already enriched are skipped unless --force.`,
	RunE: runEnrichStan,
}

var (
	enrichSocialIdentity     int64
	enrichSocialLimit        int
	enrichSocialForce        bool
	enrichSocialMinFollowers int64
	enrichSocialDryRun       bool
)

var enrichSocialCmd = &cobra.Command{
	Use:   "social",
	Short: "Estimate follower, view, and engagement metrics per platform",
	Long: `Aggregates linked-account evidence and storefront outbound links
into per-platform social signals using platform priors. With --dry-run the
synthesized signals are printed but not persisted.`,
	RunE: runEnrichSocial,
}

func init() {
	f := enrichStanCmd.Flags()
	f.StringVar(&enrichStanRunID, "run", "", "scope to identities linked in one discovery run")
	f.Int64Var(&enrichStanIdentity, "identity", 0, "enrich a single identity by id")
	f.StringVar(&enrichStanSlug, "slug", "", "enrich a single identity by stan slug")
	f.IntVar(&enrichStanLimit, "limit", 0, "max identities to process (default 25)")
	f.BoolVar(&enrichStanForce, "force", false, "re-enrich identities that already have a profile")
	f.IntVar(&enrichStanTimeout, "timeout", 0, "per-page timeout in seconds (overrides config)")

	g := enrichSocialCmd.Flags()
	g.Int64Var(&enrichSocialIdentity, "identity", 0, "enrich a single identity by id")
	g.IntVar(&enrichSocialLimit, "limit", 0, "max identities to process (default 50)")
	g.BoolVar(&enrichSocialForce, "force", false, "recompute signals for already-enriched identities")
	g.Int64Var(&enrichSocialMinFollowers, "min-followers", 0, "drop platforms below this follower estimate (overrides config)")
	g.BoolVar(&enrichSocialDryRun, "dry-run", false, "print signals without persisting")

	enrichCmd.AddCommand(enrichStanCmd)
	enrichCmd.AddCommand(enrichSocialCmd)
	rootCmd.AddCommand(enrichCmd)
}

func runEnrichStan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	timeout := enrichStanTimeout
	if timeout <= 0 {
		timeout = cfg.Stan.TimeoutSecs
	}
	session := newBrowserSession(time.Duration(timeout) * time.Second)
	defer session.Close() //nolint:errcheck

	limit := enrichStanLimit
	if limit <= 0 {
		limit = cfg.Stan.MaxBatchSize
	}

	enricher := stan.NewEnricher(st, session,
		stan.WithMaxOffers(cfg.Stan.MaxOffers),
		stan.WithPageTimeout(time.Duration(timeout)*time.Second),
	)
	resp, err := enricher.EnrichBatch(ctx, store.StanSelector{
		DiscoveryRunID: enrichStanRunID,
		IdentityID:     enrichStanIdentity,
		StanSlug:       enrichStanSlug,
		Limit:          limit,
		Force:          enrichStanForce,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runEnrichSocial(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	minFollowers := enrichSocialMinFollowers
	if minFollowers <= 0 {
		minFollowers = cfg.Social.MinFollowerEstimate
	}

	enricher := social.NewEnricher(st, social.WithMaxConcurrent(cfg.Social.MaxConcurrent))
	resp, err := enricher.EnrichBatch(ctx, social.Request{
		IdentityID:          enrichSocialIdentity,
		Limit:               enrichSocialLimit,
		Force:               enrichSocialForce,
		MinFollowerEstimate: minFollowers,
		DryRun:              enrichSocialDryRun,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
