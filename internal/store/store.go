// Package store keeps a local ledger of pricing and export runs.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RunKind identifies which pipeline a run belongs to.
type RunKind string

const (
	RunKindPrice RunKind = "price"
	RunKindList  RunKind = "list"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one invocation of a pipeline.
type Run struct {
	ID         string     `json:"id"`
	Kind       RunKind    `json:"kind"`
	Status     RunStatus  `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Items      int        `json:"items"`
}

// PriceUpdate records one price written back to a recipe.
type PriceUpdate struct {
	RunID      string          `json:"run_id"`
	RecipeID   string          `json:"recipe_id"`
	RecipeName string          `json:"recipe_name"`
	Price      decimal.Decimal `json:"price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ExportRecord records one shopping list file.
type ExportRecord struct {
	RunID       string    `json:"run_id"`
	Path        string    `json:"path"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Recipes     int       `json:"recipes"`
	Ingredients int       `json:"ingredients"`
	Skipped     int       `json:"skipped"`
}

// Ledger persists run history. A failed price run leaves its completed
// updates behind, which shows how far it got.
type Ledger interface {
	StartRun(ctx context.Context, kind RunKind) (*Run, error)
	FinishRun(ctx context.Context, runID string, runErr error) error
	RecordPrice(ctx context.Context, u PriceUpdate) error
	RecordExport(ctx context.Context, e ExportRecord) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	LastPrices(ctx context.Context) (map[string]PriceUpdate, error)

	Migrate(ctx context.Context) error
	Close() error
}
