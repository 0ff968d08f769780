package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "creator-scout",
	Short: "Creator discovery and compatibility scoring pipeline",
	Long:  "Crawls search engines for creator accounts, resolves them into canonical identities, enriches storefront and social signals, and scores creators against brand requirements.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
