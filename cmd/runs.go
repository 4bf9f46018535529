package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/notion-kitchen/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent price and shopping list runs",
	Long:  "Reads the local run ledger configured by ledger.path and prints the most recent runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Ledger.Path == "" {
			fmt.Fprintln(os.Stderr, "Run ledger is disabled; set ledger.path to enable it.")
			return nil
		}

		ledger, err := store.Open(ctx, cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer ledger.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := ledger.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "max number of runs to display")
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tSTATUS\tITEMS\tSTARTED\tDURATION\tERROR")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-----\t-------\t--------\t-----")

	for _, r := range runs {
		dur := "-"
		if r.FinishedAt != nil {
			dur = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}

		msg := r.Error
		if runes := []rune(msg); len(runes) > 40 {
			msg = string(runes[:37]) + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Kind,
			r.Status,
			r.Items,
			r.StartedAt.Format("2006-01-02 15:04"),
			dur,
			msg,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
