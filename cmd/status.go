package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/reachwell/creator-scout/internal/ingest"
)

var statusRunID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show coverage statistics for a discovery run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if statusRunID == "" {
			return eris.New("--run is required")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		report, err := ingest.NewService(st).Coverage(ctx, statusRunID)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusRunID, "run", "", "discovery run id")
	rootCmd.AddCommand(statusCmd)
}
