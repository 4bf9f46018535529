package kitchen

import (
	"context"
	"errors"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/notion-kitchen/internal/model"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

// IngredientsOf returns the shopping list contribution of one recipe and the
// number of rows skipped because they link no master ingredient. Skipped
// rows are logged with the recipe name so they can be fixed in Notion.
func (w *Workspace) IngredientsOf(ctx context.Context, recipeID, recipeName string) (model.ShoppingList, int, error) {
	dbID, err := notion.FirstChildDatabase(ctx, w.client, recipeID)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "kitchen: ingredient table of %q", recipeName)
	}

	rows, err := notion.QueryAll(ctx, w.client, dbID, nil)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "kitchen: ingredient rows of %q", recipeName)
	}

	list := model.ShoppingList{}
	skipped := 0
	for _, row := range rows {
		ing, err := w.parseRow(row)
		if errors.Is(err, notion.ErrRollupEmpty) {
			skipped++
			zap.L().Warn(fmt.Sprintf("recipe %q has an ingredient row without a master ingredient; link every row to a master record", recipeName),
				zap.String("recipe", recipeName),
				zap.String("row_id", string(row.ID)),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			return nil, skipped, eris.Wrapf(err, "kitchen: ingredient row %s of %q", row.ID, recipeName)
		}
		list.Add(ing.Name, model.Entry{Amount: ing.Amount, Unit: ing.Unit, Recipe: recipeName})
	}
	return list, skipped, nil
}

func (w *Workspace) parseRow(row notionapi.Page) (model.IngredientRow, error) {
	var ing model.IngredientRow
	var err error

	if ing.Name, err = notion.RollupTitle(row, w.schema.RowMasterName); err != nil {
		return ing, err
	}
	if ing.Amount, err = notion.Number(row, w.schema.RowAmount); err != nil {
		return ing, err
	}
	if ing.Unit, err = notion.RollupSelect(row, w.schema.RowUnit); err != nil {
		return ing, err
	}
	return ing, nil
}

// BuildList merges the ingredients of recipes in order. Each ingredient's
// entries follow the order of recipes.
func (w *Workspace) BuildList(ctx context.Context, recipes []model.Recipe) (model.ShoppingList, int, error) {
	list := model.ShoppingList{}
	skipped := 0
	for _, r := range recipes {
		part, n, err := w.IngredientsOf(ctx, r.ID, r.Name)
		skipped += n
		if err != nil {
			return nil, skipped, err
		}
		list.Merge(part)
	}
	return list, skipped, nil
}
