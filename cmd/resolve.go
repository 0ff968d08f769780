package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reachwell/creator-scout/internal/identity"
)

var (
	resolveRunID string
	resolveLimit int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Merge raw accounts into canonical creator identities",
	Long: `Processes not-yet-linked raw accounts, anchoring each to an identity
by stan slug or personal domain (direct or cross-linked). Accounts with no
anchor are queued as merge candidates. Safe to re-run incrementally.`,
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringVar(&resolveRunID, "run", "", "scope to one discovery run")
	f.IntVar(&resolveLimit, "limit", 0, "max accounts to process (default 200)")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	resp, err := identity.NewResolver(st).Resolve(ctx, resolveRunID, resolveLimit)
	if err != nil {
		return err
	}
	return printJSON(resp)
}
