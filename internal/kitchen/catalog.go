package kitchen

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/notion-kitchen/internal/model"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

// LoadCatalog reads the master ingredient database and groups ingredient
// names by category, with unclassified as the category of uncategorized ones.
func (w *Workspace) LoadCatalog(ctx context.Context, masterDB, unclassified string) (*model.Catalog, error) {
	pages, err := notion.QueryAll(ctx, w.client, masterDB, nil)
	if err != nil {
		return nil, eris.Wrap(err, "kitchen: query master ingredients")
	}

	items := make([]model.MasterIngredient, 0, len(pages))
	for _, p := range pages {
		name, err := notion.Title(p, w.schema.MasterName)
		if errors.Is(err, notion.ErrTitleEmpty) {
			zap.L().Warn("kitchen: skipping untitled master ingredient",
				zap.String("page_id", string(p.ID)),
			)
			continue
		}
		if err != nil {
			return nil, eris.Wrapf(err, "kitchen: master ingredient %s", p.ID)
		}

		category, err := notion.Select(p, w.schema.MasterCategory)
		if err != nil {
			return nil, eris.Wrapf(err, "kitchen: category of %q", name)
		}
		items = append(items, model.MasterIngredient{Name: name, Category: category})
	}

	return model.NewCatalog(items, unclassified), nil
}
