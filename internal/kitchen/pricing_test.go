package kitchen

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/notion-kitchen/internal/store"
	"github.com/sells-group/notion-kitchen/pkg/notion"
)

func pricingFixture(pageSize int) *fakeWorkspace {
	f := newFakeWorkspace(pageSize)
	f.addRecipe("recipes", recipePage("r-gulas", "Guláš", "2024-01-01"),
		rowPage("g1", "Hovězí", 0.5, "kg", 110.10),
		rowPage("g2", "Cibule", 2, "ks", 10.20),
		rowPage("g3", "Paprika", 1, "lžička", 0.30),
	)
	f.addRecipe("recipes", recipePage("r-buchty", "Buchty", "2024-01-03"),
		rowPage("b1", "Mouka", 0.5, "kg", 9.90),
		rowPage("b2", "Mléko", 0.25, "l", 5.05),
	)
	f.addRecipe("recipes", recipePage("r-empty", "Voda", ""))
	return f
}

func TestPriceOf(t *testing.T) {
	f := pricingFixture(2)
	w := New(f, testSchema())

	price, err := w.PriceOf(context.Background(), "r-gulas")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("120.6").Equal(price), "got %s", price)

	price, err = w.PriceOf(context.Background(), "r-empty")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestPriceOf_DecimalSumIsExact(t *testing.T) {
	f := newFakeWorkspace(10)
	f.addRecipe("recipes", recipePage("r", "Test", ""),
		rowPage("a", "A", 1, "ks", 0.1),
		rowPage("b", "B", 1, "ks", 0.2),
	)
	w := New(f, testSchema())

	price, err := w.PriceOf(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, "0.3", price.String())
}

func TestPriceOf_NoIngredientTable(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("GetBlockChildren", ctx, "r1", mock.Anything).
		Return(&notionapi.GetChildrenResponse{
			Results: []notionapi.Block{
				&notionapi.ParagraphBlock{BasicBlock: notionapi.BasicBlock{ID: "p", Type: notionapi.BlockTypeParagraph}},
			},
		}, nil).Once()

	w := New(mc, testSchema())
	_, err := w.PriceOf(ctx, "r1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, notion.ErrNotChildDatabase))
	mc.AssertExpectations(t)
}

func TestPriceOf_MissingPriceFormula(t *testing.T) {
	f := newFakeWorkspace(10)
	row := rowPage("a", "A", 1, "ks", 1)
	delete(row.Properties, "Cena")
	f.addRecipe("recipes", recipePage("r", "Test", ""), row)

	_, err := New(f, testSchema()).PriceOf(context.Background(), "r")
	require.Error(t, err)
	assert.True(t, errors.Is(err, notion.ErrPropertyMissing))
}

func TestPriceOf_NonNumericFormula(t *testing.T) {
	f := newFakeWorkspace(10)
	row := rowPage("a", "A", 1, "ks", 1)
	row.Properties["Cena"] = &notionapi.FormulaProperty{Formula: notionapi.Formula{
		Type:   notionapi.FormulaType("string"),
		String: "n/a",
	}}
	f.addRecipe("recipes", recipePage("r", "Test", ""), rowPage("b", "B", 1, "ks", 3), row)

	_, err := New(f, testSchema()).PriceOf(context.Background(), "r")
	require.Error(t, err)
	assert.True(t, errors.Is(err, notion.ErrPropertyType))

	_, err = New(f, testSchema()).UpdatePrices(context.Background(), "recipes")
	require.Error(t, err)
	assert.Empty(t, f.updates, "no price is written when a row price is not a number")
}

func TestUpdatePrices_WritesEveryRecipe(t *testing.T) {
	f := pricingFixture(1)
	w := New(f, testSchema())

	report, err := w.UpdatePrices(context.Background(), "recipes")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 3, report.Updated)
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, []string{"r-buchty", "r-empty", "r-gulas"}, f.updatedIDs())
	prices := f.writtenPrices("Cena")
	assert.InDelta(t, 120.6, prices["r-gulas"], 1e-9)
	assert.InDelta(t, 14.95, prices["r-buchty"], 1e-9)
	assert.InDelta(t, 0, prices["r-empty"], 1e-9)

	// Only the price property is patched.
	for _, u := range f.updates {
		assert.Len(t, u.Props, 1)
	}
}

func TestUpdatePrices_Idempotent(t *testing.T) {
	f := pricingFixture(2)
	w := New(f, testSchema())
	ctx := context.Background()

	_, err := w.UpdatePrices(ctx, "recipes")
	require.NoError(t, err)
	first := f.writtenPrices("Cena")

	f.updates = nil
	_, err = w.UpdatePrices(ctx, "recipes")
	require.NoError(t, err)
	second := f.writtenPrices("Cena")

	assert.Equal(t, first, second)
	assert.Len(t, f.updates, 3, "prices are written even when unchanged")
}

func TestUpdatePrices_LedgerTracksChanges(t *testing.T) {
	ctx := context.Background()
	ledger, err := store.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() }) //nolint:errcheck

	f := pricingFixture(5)
	w := New(f, testSchema(), WithLedger(ledger))

	first, err := w.UpdatePrices(ctx, "recipes")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Changed)

	second, err := w.UpdatePrices(ctx, "recipes")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Changed)

	// Change one row price and run again.
	tableID := "r-gulas-ingredients"
	f.databases[tableID][0] = rowPage("g1", "Hovězí", 0.5, "kg", 120.10)
	third, err := w.UpdatePrices(ctx, "recipes")
	require.NoError(t, err)
	assert.Equal(t, 1, third.Changed)

	last, err := ledger.LastPrices(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("130.6").Equal(last["r-gulas"].Price))
	assert.Equal(t, "Guláš", last["r-gulas"].RecipeName)

	runs, err := ledger.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.Equal(t, store.RunStatusComplete, r.Status)
		assert.Equal(t, 3, r.Items)
	}
}

func TestUpdatePrices_StopsAtFirstFailure(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "recipes", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{
				recipePage("r1", "První", ""),
				recipePage("r2", "Druhý", ""),
			},
		}, nil).Once()
	mc.On("GetBlockChildren", ctx, "r1", mock.Anything).
		Return(&notionapi.GetChildrenResponse{
			Results: []notionapi.Block{
				&notionapi.ChildDatabaseBlock{BasicBlock: notionapi.BasicBlock{ID: "t1", Type: notionapi.BlockTypeChildDatabase}},
			},
		}, nil).Once()
	mc.On("QueryDatabase", ctx, "t1", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{rowPage("x", "Sůl", 1, "g", 2)},
		}, nil).Once()
	mc.On("UpdatePage", ctx, "r1", mock.AnythingOfType("*notionapi.PageUpdateRequest")).
		Return(&notionapi.Page{ID: "r1"}, nil).Once()
	mc.On("GetBlockChildren", ctx, "r2", mock.Anything).
		Return(nil, assert.AnError).Once()

	ledger, err := store.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() }) //nolint:errcheck

	w := New(mc, testSchema(), WithLedger(ledger))
	report, err := w.UpdatePrices(ctx, "recipes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Druhý")
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Updated)
	mc.AssertExpectations(t)

	runs, err := ledger.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunStatusFailed, runs[0].Status)
	assert.Equal(t, 1, runs[0].Items)
}

func TestUpdatePrices_QueryError(t *testing.T) {
	mc := new(mockNotionClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "recipes", mock.Anything).Return(nil, assert.AnError).Once()

	report, err := New(mc, testSchema()).UpdatePrices(ctx, "recipes")
	require.Error(t, err)
	assert.Equal(t, 0, report.Updated)
	mc.AssertNotCalled(t, "UpdatePage", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePrices_CancelledRunIsClosedInLedger(t *testing.T) {
	ledger, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() }) //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc := new(mockNotionClient)
	mc.On("QueryDatabase", mock.Anything, "recipes", mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled).Once()

	_, err = New(mc, testSchema(), WithLedger(ledger)).UpdatePrices(ctx, "recipes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	runs, err := ledger.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunStatusFailed, runs[0].Status)
	assert.NotNil(t, runs[0].FinishedAt)
}
