package kitchen

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/notion-kitchen/internal/store"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

// PriceReport summarizes an UpdatePrices run.
type PriceReport struct {
	RunID   string
	Total   int
	Updated int
	Changed int
}

// PriceOf sums the price formula over every row of the recipe's ingredient
// table, which must be the first block on the recipe page.
func (w *Workspace) PriceOf(ctx context.Context, recipeID string) (decimal.Decimal, error) {
	dbID, err := notion.FirstChildDatabase(ctx, w.client, recipeID)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "kitchen: ingredient table of %s", recipeID)
	}

	rows, err := notion.QueryAll(ctx, w.client, dbID, nil)
	if err != nil {
		return decimal.Zero, eris.Wrapf(err, "kitchen: ingredient rows of %s", recipeID)
	}

	sum := decimal.Zero
	for _, row := range rows {
		v, err := notion.FormulaNumber(row, w.schema.RowPrice)
		if err != nil {
			return decimal.Zero, eris.Wrapf(err, "kitchen: price of row %s in %s", row.ID, recipeID)
		}
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum, nil
}

// UpdatePrices recomputes and writes back the price of every recipe in
// recipesDB. Every recipe is written, changed or not. The first failure stops
// the run; recipes already written stay written and are listed in the ledger.
func (w *Workspace) UpdatePrices(ctx context.Context, recipesDB string) (*PriceReport, error) {
	run, err := w.ledger.StartRun(ctx, store.RunKindPrice)
	if err != nil {
		return nil, eris.Wrap(err, "kitchen: start price run")
	}
	report := &PriceReport{RunID: run.ID}

	err = w.updatePrices(ctx, recipesDB, report)
	// An interrupted run is still closed out in the ledger.
	if ferr := w.ledger.FinishRun(context.WithoutCancel(ctx), run.ID, err); ferr != nil {
		zap.L().Warn("kitchen: finish price run", zap.String("run_id", run.ID), zap.Error(ferr))
	}
	return report, err
}

func (w *Workspace) updatePrices(ctx context.Context, recipesDB string, report *PriceReport) error {
	previous, err := w.ledger.LastPrices(ctx)
	if err != nil {
		return eris.Wrap(err, "kitchen: load previous prices")
	}

	pages, err := notion.QueryAll(ctx, w.client, recipesDB, nil)
	if err != nil {
		return eris.Wrap(err, "kitchen: query recipes")
	}
	report.Total = len(pages)

	for _, p := range pages {
		id := string(p.ID)
		name := w.recipeLabel(p)

		price, err := w.PriceOf(ctx, id)
		if err != nil {
			return eris.Wrapf(err, "kitchen: price %q", name)
		}

		req := &notionapi.PageUpdateRequest{
			Properties: notionapi.Properties{
				w.schema.RecipePrice: notionapi.NumberProperty{
					Type:   notionapi.PropertyTypeNumber,
					Number: price.InexactFloat64(),
				},
			},
		}
		if _, err := w.client.UpdatePage(ctx, id, req); err != nil {
			return eris.Wrapf(err, "kitchen: write price of %q", name)
		}
		report.Updated++

		fields := []zap.Field{
			zap.String("recipe", name),
			zap.String("price", price.String()),
		}
		if prev, ok := previous[id]; ok {
			fields = append(fields, zap.String("previous", prev.Price.String()))
			if !prev.Price.Equal(price) {
				report.Changed++
			}
		}
		zap.L().Info("price updated", fields...)

		if err := w.ledger.RecordPrice(ctx, store.PriceUpdate{
			RunID:      report.RunID,
			RecipeID:   id,
			RecipeName: name,
			Price:      price,
		}); err != nil {
			return eris.Wrapf(err, "kitchen: record price of %q", name)
		}
	}
	return nil
}
