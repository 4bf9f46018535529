package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/notion-kitchen/internal/config"
	"github.com/sells-group/notion-kitchen/internal/export"
	"github.com/sells-group/notion-kitchen/internal/kitchen"
	"github.com/sells-group/notion-kitchen/internal/store"
)

var (
	cfg     *config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "kitchen",
	Short: "Recipe prices and shopping lists for a Notion meal planner",
	Long: `Recomputes recipe prices from their ingredient tables and writes them back
to Notion (--price), and exports a shopping list grouped by ingredient
category for the recipes planned between two dates (--list START END).`,
	Example: `  kitchen --price
  kitchen --list 2024-01-01 2024-01-07
  kitchen -p -l 2024-01-01 2024-01-07 --format xlsx`,
	Args:         rootArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return eris.Wrap(err, "load .env")
		}

		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	RunE: runRoot,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// rootArgs accepts START and END only when --list is set.
func rootArgs(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetBool("list")
	if list {
		if len(args) != 2 {
			return eris.Errorf("--list takes START and END dates (YYYY-MM-DD), got %d argument(s)", len(args))
		}
		return nil
	}
	return cobra.NoArgs(cmd, args)
}

// parseWindow parses the inclusive date window given to --list.
func parseWindow(startArg, endArg string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, startArg)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Errorf("invalid START %q: want YYYY-MM-DD", startArg)
	}
	end, err := time.Parse(time.DateOnly, endArg)
	if err != nil {
		return time.Time{}, time.Time{}, eris.Errorf("invalid END %q: want YYYY-MM-DD", endArg)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, eris.Errorf("END %s is before START %s", endArg, startArg)
	}
	return start, end, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	price, _ := cmd.Flags().GetBool("price")
	list, _ := cmd.Flags().GetBool("list")
	if !price && !list {
		return nil
	}

	// Check arguments before any remote call so a typo costs nothing.
	var start, end time.Time
	var format export.Format
	if list {
		var err error
		if start, end, err = parseWindow(args[0], args[1]); err != nil {
			return err
		}
		formatArg, _ := cmd.Flags().GetString("format")
		if formatArg == "" {
			formatArg = cfg.Export.Format
		}
		if format, err = export.ParseFormat(formatArg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, err := store.Open(ctx, cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer ledger.Close() //nolint:errcheck

	ws := kitchen.New(newNotionClient(cfg), cfg.Schema, kitchen.WithLedger(ledger))

	if price {
		if err := runPrice(ctx, ws); err != nil {
			return err
		}
	}
	if list {
		return runList(ctx, ws, kitchen.ExportOptions{
			RecipesDB:    cfg.RecipesDB,
			MasterDB:     cfg.MasterIngredientsDB,
			Start:        start,
			End:          end,
			Dir:          cfg.Export.Dir,
			Prefix:       cfg.Export.Prefix,
			Format:       format,
			Unclassified: cfg.Export.Unclassified,
		})
	}
	return nil
}

func runPrice(ctx context.Context, ws *kitchen.Workspace) error {
	report, err := ws.UpdatePrices(ctx, cfg.RecipesDB)
	if err != nil {
		if report != nil {
			zap.L().Error("price update stopped",
				zap.Int("updated", report.Updated),
				zap.Int("total", report.Total),
			)
		}
		return err
	}
	zap.L().Info("prices updated",
		zap.String("run_id", report.RunID),
		zap.Int("recipes", report.Updated),
		zap.Int("changed", report.Changed),
	)
	return nil
}

func runList(ctx context.Context, ws *kitchen.Workspace, opts kitchen.ExportOptions) error {
	report, err := ws.CreateShoppingList(ctx, opts)
	if err != nil {
		return err
	}
	zap.L().Info("shopping list written",
		zap.String("path", report.Path),
		zap.Int("recipes", report.Recipes),
		zap.Int("ingredients", report.Ingredients),
		zap.Int("skipped_rows", report.Skipped),
		zap.Int("missing", len(report.Missing)),
	)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ./config.yml)")

	rootCmd.Flags().BoolP("price", "p", false, "recompute recipe prices and write them to Notion")
	rootCmd.Flags().BoolP("list", "l", false, "export the shopping list for START END (YYYY-MM-DD, inclusive)")
	rootCmd.Flags().String("format", "", "shopping list format: csv or xlsx (default from export.format)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
