package kitchen

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/notion-kitchen/internal/export"
	"github.com/sells-group/notion-kitchen/internal/store"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

// ExportOptions controls CreateShoppingList.
type ExportOptions struct {
	RecipesDB    string
	MasterDB     string
	Start        time.Time
	End          time.Time
	Dir          string
	Prefix       string
	Format       export.Format
	Unclassified string
}

// ExportReport summarizes a shopping list export.
type ExportReport struct {
	RunID       string
	Path        string
	Recipes     int
	Ingredients int
	Entries     int
	Skipped     int
	// Missing lists ingredients left out because the catalog does not know them.
	Missing []string
}

// CreateShoppingList exports the ingredients of every recipe dated within
// [opts.Start, opts.End] to "<prefix>_<start>_<end>.<format>" in opts.Dir.
func (w *Workspace) CreateShoppingList(ctx context.Context, opts ExportOptions) (*ExportReport, error) {
	run, err := w.ledger.StartRun(ctx, store.RunKindList)
	if err != nil {
		return nil, eris.Wrap(err, "kitchen: start list run")
	}
	report := &ExportReport{RunID: run.ID}

	err = w.createShoppingList(ctx, opts, report)
	// An interrupted run is still closed out in the ledger.
	if ferr := w.ledger.FinishRun(context.WithoutCancel(ctx), run.ID, err); ferr != nil {
		zap.L().Warn("kitchen: finish list run", zap.String("run_id", run.ID), zap.Error(ferr))
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (w *Workspace) createShoppingList(ctx context.Context, opts ExportOptions, report *ExportReport) error {
	recipes, err := w.Recipes(ctx, opts.RecipesDB, notion.DateWindow(w.schema.RecipeDate, opts.Start, opts.End))
	if err != nil {
		return err
	}
	report.Recipes = len(recipes)

	list, skipped, err := w.BuildList(ctx, recipes)
	report.Skipped = skipped
	if err != nil {
		return err
	}
	report.Ingredients = len(list)
	report.Entries = list.EntryCount()

	// Load the catalog before touching the output file so a failed lookup
	// leaves no truncated export behind.
	catalog, err := w.LoadCatalog(ctx, opts.MasterDB, opts.Unclassified)
	if err != nil {
		return err
	}
	report.Missing = catalog.Missing(list)
	if len(report.Missing) > 0 {
		zap.L().Warn("ingredients missing from the master catalog are left out of the export",
			zap.Strings("ingredients", report.Missing),
		)
	}

	name := export.FileName(opts.Prefix, opts.Start, opts.End, opts.Format)
	path, err := export.WriteFile(opts.Dir, name, opts.Format, export.Layout(list, catalog))
	if err != nil {
		return eris.Wrap(err, "kitchen: write shopping list")
	}
	report.Path = path

	if err := w.ledger.RecordExport(ctx, store.ExportRecord{
		RunID:       report.RunID,
		Path:        path,
		Start:       opts.Start,
		End:         opts.End,
		Recipes:     report.Recipes,
		Ingredients: report.Ingredients,
		Skipped:     report.Skipped,
	}); err != nil {
		return eris.Wrap(err, "kitchen: record export")
	}
	return nil
}
