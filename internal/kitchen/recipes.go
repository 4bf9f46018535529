package kitchen

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/notion-kitchen/internal/model"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

// Recipes returns every recipe matched by query (nil for all), in API order.
func (w *Workspace) Recipes(ctx context.Context, dbID string, query *notionapi.DatabaseQueryRequest) ([]model.Recipe, error) {
	pages, err := notion.QueryAll(ctx, w.client, dbID, query)
	if err != nil {
		return nil, eris.Wrap(err, "kitchen: query recipes")
	}

	recipes := make([]model.Recipe, 0, len(pages))
	for _, p := range pages {
		r, err := w.parseRecipe(p)
		if err != nil {
			return nil, eris.Wrapf(err, "kitchen: recipe %s", p.ID)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func (w *Workspace) parseRecipe(p notionapi.Page) (model.Recipe, error) {
	r := model.Recipe{ID: string(p.ID)}

	name, err := notion.Title(p, w.schema.RecipeName)
	if err != nil {
		return r, err
	}
	r.Name = name

	// Date is optional; only the list export filters on it.
	if _, ok := p.Properties[w.schema.RecipeDate]; ok {
		if r.Date, err = notion.Date(p, w.schema.RecipeDate); err != nil {
			return r, err
		}
	}
	return r, nil
}

// recipeLabel names a recipe page for logs, falling back to its ID.
func (w *Workspace) recipeLabel(p notionapi.Page) string {
	if name, err := notion.Title(p, w.schema.RecipeName); err == nil && name != "" {
		return name
	}
	return string(p.ID)
}
