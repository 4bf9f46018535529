package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NopLedger discards everything. It is used when no ledger path is configured.
type NopLedger struct{}

var _ Ledger = NopLedger{}

func (NopLedger) StartRun(_ context.Context, kind RunKind) (*Run, error) {
	return &Run{ID: uuid.New().String(), Kind: kind, Status: RunStatusRunning, StartedAt: time.Now().UTC()}, nil
}

func (NopLedger) FinishRun(context.Context, string, error) error { return nil }

func (NopLedger) RecordPrice(context.Context, PriceUpdate) error { return nil }

func (NopLedger) RecordExport(context.Context, ExportRecord) error { return nil }

func (NopLedger) ListRuns(context.Context, int) ([]Run, error) { return nil, nil }

func (NopLedger) LastPrices(context.Context) (map[string]PriceUpdate, error) {
	return map[string]PriceUpdate{}, nil
}

func (NopLedger) Migrate(context.Context) error { return nil }

func (NopLedger) Close() error { return nil }

// Open returns a migrated SQLite ledger at path, or a NopLedger when path is empty.
func Open(ctx context.Context, path string) (Ledger, error) {
	if path == "" {
		return NopLedger{}, nil
	}
	l, err := NewSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := l.Migrate(ctx); err != nil {
		l.Close() //nolint:errcheck
		return nil, err
	}
	return l, nil
}
