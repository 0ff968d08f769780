package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/reachwell/creator-scout/internal/crawl"
	"github.com/reachwell/creator-scout/internal/ingest"
)

var (
	ingestRunID string
	ingestQuery string
	ingestFile  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalize and persist crawl results from a JSON file or stdin",
	Long: `Reads a JSON array of crawl result rows, normalizes each into a raw
account, and upserts them into a discovery run. Re-ingesting the same URL for
the same run and query updates the row instead of duplicating it.

Examples:
  creator-scout ingest --file results.json --run run-2026-08
  cat results.json | creator-scout ingest --query "fitness creators"`,
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestRunID, "run", "", "discovery run id (generated if empty)")
	f.StringVar(&ingestQuery, "query", "", "query to attribute rows to when a row has none")
	f.StringVar(&ingestFile, "file", "", "path to results JSON (default stdin)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var in io.Reader = os.Stdin
	if ingestFile != "" {
		f, err := os.Open(ingestFile)
		if err != nil {
			return eris.Wrapf(err, "open %s", ingestFile)
		}
		defer f.Close() //nolint:errcheck
		in = f
	}

	var results []crawl.Result
	if err := json.NewDecoder(in).Decode(&results); err != nil {
		return eris.Wrap(err, "decode results")
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	resp, err := ingest.NewService(st).Ingest(ctx, ingest.Request{
		DiscoveryRunID: ingestRunID,
		Query:          ingestQuery,
		Results:        results,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
