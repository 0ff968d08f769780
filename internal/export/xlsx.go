// Package export writes discovered creators and their enrichment results to
// an xlsx workbook for handoff to outreach tooling.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/reachwell/creator-scout/internal/compat"
	"github.com/reachwell/creator-scout/internal/model"
	"github.com/reachwell/creator-scout/internal/signals"
	"github.com/reachwell/creator-scout/internal/store"
)

// Options scopes one export.
type Options struct {
	Limit int
	// Brand, when set, adds a Scores sheet ranking identities against it.
	Brand *model.BrandSpec
}

// Exporter assembles workbooks from the store.
type Exporter struct {
	store     store.Store
	extractor *signals.Extractor
}

// NewExporter creates an Exporter over the given store.
func NewExporter(st store.Store) *Exporter {
	return &Exporter{store: st, extractor: signals.NewExtractor(st)}
}

// WriteFile builds the workbook and saves it to path.
func (e *Exporter) WriteFile(ctx context.Context, path string, opts Options) error {
	file, err := e.Workbook(ctx, opts)
	if err != nil {
		return err
	}
	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	zap.L().Info("workbook written", zap.String("path", path))
	return nil
}

// Workbook builds an in-memory workbook with identity, storefront, and
// social sheets, plus a scores sheet when a brand is supplied.
func (e *Exporter) Workbook(ctx context.Context, opts Options) (*xlsx.File, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	identities, err := e.store.ListIdentities(ctx, limit, 0)
	if err != nil {
		return nil, eris.Wrap(err, "export: list identities")
	}

	file := xlsx.NewFile()
	if err := e.addIdentitySheet(file, identities); err != nil {
		return nil, err
	}
	if err := e.addStorefrontSheet(ctx, file, identities); err != nil {
		return nil, err
	}
	if err := e.addSocialSheet(ctx, file, identities); err != nil {
		return nil, err
	}
	if opts.Brand != nil {
		if err := e.addScoreSheet(ctx, file, identities, *opts.Brand); err != nil {
			return nil, err
		}
	}
	return file, nil
}

func (e *Exporter) addIdentitySheet(file *xlsx.File, identities []model.CreatorIdentity) error {
	sheet, err := file.AddSheet("Identities")
	if err != nil {
		return eris.Wrap(err, "export: add identities sheet")
	}
	headerRow(sheet, "ID", "Stan Slug", "Personal Domain", "Status", "Engagement Estimate", "Created")

	for _, ident := range identities {
		row := sheet.AddRow()
		row.AddCell().SetInt64(ident.ID)
		row.AddCell().Value = deref(ident.CanonicalStanSlug)
		row.AddCell().Value = deref(ident.CanonicalDomain)
		row.AddCell().Value = string(ident.Status)
		if ident.EngagementEstimate != nil {
			row.AddCell().SetFloatWithFormat(*ident.EngagementEstimate, "0.00%")
		} else {
			row.AddCell()
		}
		row.AddCell().Value = ident.CreatedAt.Format("2006-01-02")
	}
	return nil
}

func (e *Exporter) addStorefrontSheet(ctx context.Context, file *xlsx.File, identities []model.CreatorIdentity) error {
	sheet, err := file.AddSheet("Storefronts")
	if err != nil {
		return eris.Wrap(err, "export: add storefronts sheet")
	}
	headerRow(sheet, "Identity", "Name", "Handle", "Bio", "Offers", "Top Price",
		"Product Types", "CTA Style", "Email", "Confidence")

	for _, ident := range identities {
		profile, err := e.store.GetStanProfile(ctx, ident.ID)
		if err != nil {
			return eris.Wrapf(err, "export: storefront for %d", ident.ID)
		}
		if profile == nil {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetInt64(ident.ID)
		row.AddCell().Value = profile.ProfileName
		row.AddCell().Value = profile.Handle
		row.AddCell().Value = profile.Bio
		row.AddCell().SetInt(len(profile.OfferCards))
		if len(profile.PricePoints) > 0 {
			row.AddCell().SetFloat(profile.PricePoints[0])
		} else {
			row.AddCell()
		}
		row.AddCell().Value = strings.Join(profile.ProductTypes, ", ")
		row.AddCell().Value = string(profile.CTAStyle)
		row.AddCell().Value = profile.Email
		row.AddCell().SetFloatWithFormat(profile.Confidence, "0.00")
	}
	return nil
}

func (e *Exporter) addSocialSheet(ctx context.Context, file *xlsx.File, identities []model.CreatorIdentity) error {
	sheet, err := file.AddSheet("Social Signals")
	if err != nil {
		return eris.Wrap(err, "export: add social sheet")
	}
	headerRow(sheet, "Identity", "Platform", "Followers", "Avg Views",
		"Engagement", "Sample Size", "Quality", "Confidence")

	for _, ident := range identities {
		sigs, err := e.store.ListSocialSignals(ctx, ident.ID)
		if err != nil {
			return eris.Wrapf(err, "export: signals for %d", ident.ID)
		}
		for _, sig := range sigs {
			row := sheet.AddRow()
			row.AddCell().SetInt64(ident.ID)
			row.AddCell().Value = string(sig.Platform)
			row.AddCell().SetInt64(sig.FollowersEstimate)
			row.AddCell().SetInt64(sig.AvgViewsEstimate)
			row.AddCell().SetFloatWithFormat(sig.EngagementEstimate, "0.00%")
			row.AddCell().SetInt(sig.SampleSize)
			row.AddCell().Value = string(sig.DataQuality)
			row.AddCell().SetFloatWithFormat(sig.Confidence, "0.00")
		}
	}
	return nil
}

func (e *Exporter) addScoreSheet(ctx context.Context, file *xlsx.File, identities []model.CreatorIdentity, brand model.BrandSpec) error {
	sheet, err := file.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "export: add scores sheet")
	}
	// Column order follows the brand's blended weights so the header exists
	// even when nothing matched the export filter.
	moduleOrder := compat.SortedWeights(compat.BaseWeights(brand))
	headers := []string{"Identity", "Niche", "Primary Platform", "Total"}
	for _, name := range moduleOrder {
		headers = append(headers, fmt.Sprintf("%s score", name))
	}
	headers = append(headers, "Reasons")
	headerRow(sheet, headers...)

	for _, ident := range identities {
		fs, err := e.extractor.FeatureSet(ctx, ident.ID)
		if err != nil {
			return eris.Wrapf(err, "export: features for %d", ident.ID)
		}
		score := compat.Score(brand, *fs)

		row := sheet.AddRow()
		row.AddCell().SetInt64(ident.ID)
		row.AddCell().Value = fs.Niche
		row.AddCell().Value = fs.PrimaryPlatform
		row.AddCell().SetFloatWithFormat(score.Total, "0.000")
		for _, name := range moduleOrder {
			row.AddCell().SetFloatWithFormat(score.Modules[name].Score, "0.000")
		}
		row.AddCell().Value = strings.Join(score.Reasons, "; ")
	}
	return nil
}

func headerRow(sheet *xlsx.Sheet, names ...string) {
	row := sheet.AddRow()
	for _, name := range names {
		row.AddCell().Value = name
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
