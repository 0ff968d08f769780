package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reachwell/creator-scout/internal/compat"
	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/signals"
)

var (
	scoreIdentity  int64
	scoreBrandFile string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a creator identity against a brand specification",
	Long: `Derives the creator's compatibility features (niche, topics,
audience, platforms, buying intent) and blends five scoring modules with the
brand's intent-based weights.

The brand file is YAML:

  name: LiftFuel
  intent:
    product_sale: 0.7
    community: 0.3
  category: fitness
  topics: [gym routines, nutrition]
  audiences: [fitness enthusiasts]
  platforms: [tiktok, instagram]
  priority_niches: [gym]

Example:
  creator-scout score --identity 42 --brand brand.yaml`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.Int64Var(&scoreIdentity, "identity", 0, "creator identity id (required)")
	f.StringVar(&scoreBrandFile, "brand", "", "path to brand spec YAML (required)")
	_ = scoreCmd.MarkFlagRequired("identity")
	_ = scoreCmd.MarkFlagRequired("brand")

	rootCmd.AddCommand(scoreCmd)
}

func loadBrandSpec(path string) (*model.BrandSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read brand spec %s", path)
	}
	var brand model.BrandSpec
	if err := yaml.Unmarshal(data, &brand); err != nil {
		return nil, eris.Wrapf(err, "parse brand spec %s", path)
	}
	return &brand, nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	brand, err := loadBrandSpec(scoreBrandFile)
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	fs, err := signals.NewExtractor(st).FeatureSet(ctx, scoreIdentity)
	if err != nil {
		return err
	}
	score := compat.Score(*brand, *fs)
	return printJSON(map[string]any{
		"features": fs,
		"score":    score,
	})
}
