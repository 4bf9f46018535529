// Package export renders a shopping list into spreadsheet-friendly files.
package export

import (
	"strconv"

	"github.com/sells-group/notion-kitchen/internal/model"
)

// Row is one line of an export. A header row carries only Category; an
// entry row carries the entry and, for the first entry of an ingredient,
// the ingredient name.
type Row struct {
	Header     bool
	Category   string
	Ingredient string
	Entry      model.Entry
}

// Layout walks the catalog in order and emits a header row per category,
// followed by one row per shopping list entry for each ingredient of that
// category. Ingredients missing from the catalog are not emitted.
func Layout(list model.ShoppingList, catalog *model.Catalog) []Row {
	var rows []Row
	for _, cat := range catalog.Categories {
		rows = append(rows, Row{Header: true, Category: cat.Name})
		for _, name := range cat.Ingredients {
			for i, e := range list[name] {
				r := Row{Category: cat.Name, Entry: e}
				if i == 0 {
					r.Ingredient = name
				}
				rows = append(rows, r)
			}
		}
	}
	return rows
}

// Record returns the row as CSV fields.
func (r Row) Record() []string {
	if r.Header {
		return []string{r.Category}
	}
	return []string{r.Ingredient, FormatAmount(r.Entry.Amount), r.Entry.Unit, r.Entry.Recipe}
}

// FormatAmount prints the shortest decimal that round-trips, so 2 stays "2"
// and 0.5 stays "0.5".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
