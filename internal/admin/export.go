package admin

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/plan-catalog/internal/catalog"
)

const exportSheet = "plans"

// Export writes every plan, inactive ones included, to an xlsx workbook.
// amount and features are shown the way the catalog would serve them; a
// row the catalog would reject is flagged in the last column.
func (a *Admin) Export(ctx context.Context, w io.Writer) (int, error) {
	all, err := a.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("admin: list plans: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return 0, err
	}

	header := []interface{}{
		"id",
		"name",
		"description",
		"price",
		"amount",
		"currency",
		"interval",
		"stripe_product_id",
		"stripe_price_id",
		"active",
		"features",
		"updated_at",
		"problem",
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return 0, err
	}

	for i, p := range all {
		features, problem := string(p.Features), ""
		if normalized, err := catalog.NormalizeFeatures(p.Features); err != nil {
			problem = err.Error()
		} else {
			features = string(normalized)
		}
		price, _ := p.Price.Float64()

		row := []interface{}{
			p.ID,
			p.Name,
			deref(p.Description),
			price,
			catalog.Amount(p.Price),
			catalog.Currency,
			p.Interval,
			deref(p.StripeProductID),
			deref(p.StripePriceID),
			p.Active,
			features,
			p.UpdatedAt,
			problem,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, err
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("admin: write workbook: %w", err)
	}
	a.log.Info("plans exported", "count", len(all))
	return len(all), nil
}
