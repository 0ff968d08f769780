package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/export"
)

var (
	exportOutput string
	exportLimit  int
	exportBrand  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write identities, storefronts, and social signals to an xlsx workbook",
	Long: `Exports the current creator identities with their storefront and
social enrichment to a workbook. With --brand a Scores sheet is added ranking
every identity against the brand spec.

Examples:
  creator-scout export --output creators.xlsx
  creator-scout export --output creators.xlsx --brand brand.yaml --limit 200`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOutput, "output", "creators.xlsx", "output file path")
	f.IntVar(&exportLimit, "limit", 0, "max identities to export (default 500)")
	f.StringVar(&exportBrand, "brand", "", "brand spec YAML for a Scores sheet")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := export.Options{Limit: exportLimit}
	if exportBrand != "" {
		brand, err := loadBrandSpec(exportBrand)
		if err != nil {
			return err
		}
		opts.Brand = brand
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := export.NewExporter(st).WriteFile(ctx, exportOutput, opts); err != nil {
		return err
	}
	zap.L().Info("export complete", zap.String("output", exportOutput))
	return nil
}
