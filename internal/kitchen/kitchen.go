// Package kitchen implements the meal-planning pipelines on top of a Notion
// workspace: recipe price recomputation and shopping list export.
package kitchen

import (
	"github.com/sells-group/notion-kitchen/internal/config"
	"github.com/sells-group/notion-kitchen/internal/store"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

// Workspace runs pipelines against one Notion workspace. Calls are issued
// one at a time; a Workspace is not meant for concurrent use.
type Workspace struct {
	client notion.Client
	schema config.SchemaConfig
	ledger store.Ledger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLedger records runs in l.
func WithLedger(l store.Ledger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.ledger = l
		}
	}
}

// New creates a Workspace reading properties named by schema.
func New(client notion.Client, schema config.SchemaConfig, opts ...Option) *Workspace {
	w := &Workspace{
		client: client,
		schema: schema,
		ledger: store.NopLedger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}
