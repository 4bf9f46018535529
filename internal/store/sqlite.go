package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteLedger implements Ledger using modernc.org/sqlite.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteLedger{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	error       TEXT,
	items       INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS price_updates (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	recipe_id   TEXT NOT NULL,
	recipe_name TEXT NOT NULL,
	price       TEXT NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS exports (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	path        TEXT NOT NULL,
	start_date  DATETIME NOT NULL,
	end_date    DATETIME NOT NULL,
	recipes     INTEGER NOT NULL,
	ingredients INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_price_updates_recipe ON price_updates(recipe_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_exports_run_id ON exports(run_id);
`

func (s *SQLiteLedger) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}

func (s *SQLiteLedger) StartRun(ctx context.Context, kind RunKind) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, started_at) VALUES (?, ?, ?, ?)`,
		id, string(kind), string(RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:        id,
		Kind:      kind,
		Status:    RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteLedger) FinishRun(ctx context.Context, runID string, runErr error) error {
	status := RunStatusComplete
	var errText sql.NullString
	if runErr != nil {
		status = RunStatusFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), errText, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteLedger) RecordPrice(ctx context.Context, u PriceUpdate) error {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin record price")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO price_updates (run_id, recipe_id, recipe_name, price, updated_at) VALUES (?, ?, ?, ?, ?)`,
		u.RunID, u.RecipeID, u.RecipeName, u.Price.String(), u.UpdatedAt,
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert price update for %s", u.RecipeID)
	}
	if err := bumpItems(ctx, tx, u.RunID); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit record price")
}

func (s *SQLiteLedger) RecordExport(ctx context.Context, e ExportRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin record export")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (run_id, path, start_date, end_date, recipes, ingredients, skipped) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Path, e.Start.UTC(), e.End.UTC(), e.Recipes, e.Ingredients, e.Skipped,
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert export %s", e.Path)
	}
	if err := bumpItems(ctx, tx, e.RunID); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit record export")
}

func (s *SQLiteLedger) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, status, error, items, started_at, finished_at FROM runs
		 ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		var errText sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Kind, &r.Status, &errText, &r.Items, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Error = errText.String
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// LastPrices returns the most recent recorded price per recipe ID.
func (s *SQLiteLedger) LastPrices(ctx context.Context) (map[string]PriceUpdate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, recipe_id, recipe_name, price, updated_at FROM price_updates
		 ORDER BY updated_at ASC, rowid ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last prices")
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string]PriceUpdate)
	for rows.Next() {
		var u PriceUpdate
		var price string
		if err := rows.Scan(&u.RunID, &u.RecipeID, &u.RecipeName, &price, &u.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price update")
		}
		if u.Price, err = decimal.NewFromString(price); err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse price %q", price)
		}
		out[u.RecipeID] = u
	}
	return out, eris.Wrap(rows.Err(), "sqlite: last prices iterate")
}

// helpers

func bumpItems(ctx context.Context, tx *sql.Tx, runID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE runs SET items = items + 1 WHERE id = ?`, runID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: bump items %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
