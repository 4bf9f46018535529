package kitchen

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/notion-kitchen/internal/config"
)

// mockNotionClient implements notion.Client for testing.
type mockNotionClient struct {
	mock.Mock
}

func (m *mockNotionClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *mockNotionClient) GetBlockChildren(ctx context.Context, blockID string, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error) {
	args := m.Called(ctx, blockID, pagination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.GetChildrenResponse), args.Error(1)
}

func (m *mockNotionClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

// fakeWorkspace is an in-memory Notion workspace. Queries are served in
// pages of pageSize and honour date window filters.
type fakeWorkspace struct {
	pageSize  int
	databases map[string][]notionapi.Page
	children  map[string][]notionapi.Block
	updates   []fakeUpdate
	queries   int
}

type fakeUpdate struct {
	PageID string
	Props  notionapi.Properties
}

func newFakeWorkspace(pageSize int) *fakeWorkspace {
	return &fakeWorkspace{
		pageSize:  pageSize,
		databases: map[string][]notionapi.Page{},
		children:  map[string][]notionapi.Block{},
	}
}

// addRecipe registers a recipe page in recipesDB whose first child block is
// an inline database holding rows.
func (f *fakeWorkspace) addRecipe(recipesDB string, page notionapi.Page, rows ...notionapi.Page) {
	f.databases[recipesDB] = append(f.databases[recipesDB], page)
	tableID := string(page.ID) + "-ingredients"
	f.children[string(page.ID)] = []notionapi.Block{
		&notionapi.ChildDatabaseBlock{BasicBlock: notionapi.BasicBlock{
			ID:   notionapi.BlockID(tableID),
			Type: notionapi.BlockTypeChildDatabase,
		}},
	}
	f.databases[tableID] = rows
}

func (f *fakeWorkspace) QueryDatabase(_ context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	f.queries++
	all, ok := f.databases[dbID]
	if !ok {
		return nil, fmt.Errorf("database %s not found", dbID)
	}

	var matched []notionapi.Page
	for _, p := range all {
		if matchesFilter(p, req.Filter) {
			matched = append(matched, p)
		}
	}

	start := 0
	if req.StartCursor != "" {
		if _, err := fmt.Sscanf(string(req.StartCursor), "offset-%d", &start); err != nil {
			return nil, err
		}
	}
	end := min(start+f.pageSize, len(matched))
	resp := &notionapi.DatabaseQueryResponse{Results: matched[start:end], HasMore: end < len(matched)}
	if resp.HasMore {
		resp.NextCursor = notionapi.Cursor(fmt.Sprintf("offset-%d", end))
	}
	return resp, nil
}

func matchesFilter(p notionapi.Page, filter notionapi.Filter) bool {
	pf, ok := filter.(notionapi.PropertyFilter)
	if !ok || pf.Date == nil {
		return true
	}
	dp, ok := p.Properties[pf.Property].(*notionapi.DateProperty)
	if !ok || dp.Date == nil || dp.Date.Start == nil {
		return false
	}
	d := time.Time(*dp.Date.Start)
	if pf.Date.OnOrAfter != nil && d.Before(time.Time(*pf.Date.OnOrAfter)) {
		return false
	}
	if pf.Date.OnOrBefore != nil && d.After(time.Time(*pf.Date.OnOrBefore)) {
		return false
	}
	if pf.Date.Before != nil && !d.Before(time.Time(*pf.Date.Before)) {
		return false
	}
	return true
}

func (f *fakeWorkspace) GetBlockChildren(_ context.Context, blockID string, _ *notionapi.Pagination) (*notionapi.GetChildrenResponse, error) {
	return &notionapi.GetChildrenResponse{Results: f.children[blockID]}, nil
}

func (f *fakeWorkspace) UpdatePage(_ context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	f.updates = append(f.updates, fakeUpdate{PageID: pageID, Props: req.Properties})
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

// writtenPrices returns the last price written per page.
func (f *fakeWorkspace) writtenPrices(property string) map[string]float64 {
	out := map[string]float64{}
	for _, u := range f.updates {
		if np, ok := u.Props[property].(notionapi.NumberProperty); ok {
			out[u.PageID] = np.Number
		}
	}
	return out
}

func (f *fakeWorkspace) updatedIDs() []string {
	var ids []string
	for _, u := range f.updates {
		ids = append(ids, u.PageID)
	}
	sort.Strings(ids)
	return ids
}

// --- page builders ---

func testSchema() config.SchemaConfig {
	return config.SchemaConfig{
		RecipeName:     "Jméno",
		RecipeDate:     "Datum",
		RecipePrice:    "Cena",
		RowPrice:       "Cena",
		RowMasterName:  "Master Name",
		RowAmount:      "Počet",
		RowUnit:        "Jednotka",
		MasterName:     "Jméno",
		MasterCategory: "Typ",
	}
}

// text returns s as rich text; an empty s gives an empty title.
func text(s string) []notionapi.RichText {
	if s == "" {
		return nil
	}
	return []notionapi.RichText{{Type: notionapi.ObjectTypeText, PlainText: s, Text: &notionapi.Text{Content: s}}}
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func recipePage(id, name, date string) notionapi.Page {
	props := notionapi.Properties{
		"Jméno": &notionapi.TitleProperty{Title: text(name)},
		"Cena":  &notionapi.NumberProperty{},
	}
	if date != "" {
		d := notionapi.Date(day(date))
		props["Datum"] = &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
	}
	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}

// rowPage builds an ingredient row. An empty name leaves the master rollup
// unlinked.
func rowPage(id, name string, amount float64, unit string, price float64) notionapi.Page {
	nameArr := notionapi.PropertyArray{}
	unitArr := notionapi.PropertyArray{}
	if name != "" {
		nameArr = append(nameArr, &notionapi.TitleProperty{Title: text(name)})
		unitArr = append(unitArr, &notionapi.SelectProperty{Select: notionapi.Option{Name: unit}})
	}
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Master Name": &notionapi.RollupProperty{Rollup: notionapi.Rollup{Type: "array", Array: nameArr}},
			"Počet":       &notionapi.NumberProperty{Number: amount},
			"Jednotka":    &notionapi.RollupProperty{Rollup: notionapi.Rollup{Type: "array", Array: unitArr}},
			"Cena": &notionapi.FormulaProperty{Formula: notionapi.Formula{
				Type:   notionapi.FormulaTypeNumber,
				Number: price,
			}},
		},
	}
}

func masterPage(id, name, category string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Jméno": &notionapi.TitleProperty{Title: text(name)},
			"Typ":   &notionapi.SelectProperty{Select: notionapi.Option{Name: category}},
		},
	}
}
