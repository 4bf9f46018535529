package model

import (
	"sort"

	"github.com/samber/lo"
)

// Entry is one recipe's demand for an ingredient.
type Entry struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Recipe string  `json:"recipe"`
}

// ShoppingList maps an ingredient name to the entries contributed by each
// recipe, in recipe processing order.
type ShoppingList map[string][]Entry

// Add appends an entry under name.
func (l ShoppingList) Add(name string, e Entry) {
	l[name] = append(l[name], e)
}

// Merge appends every entry sequence of other to the matching key of l.
func (l ShoppingList) Merge(other ShoppingList) {
	for name, entries := range other {
		l[name] = append(l[name], entries...)
	}
}

// Names returns the ingredient names in lexical order.
func (l ShoppingList) Names() []string {
	names := lo.Keys(l)
	sort.Strings(names)
	return names
}

// EntryCount is the total number of entries across all ingredients.
func (l ShoppingList) EntryCount() int {
	return lo.SumBy(lo.Values(l), func(es []Entry) int { return len(es) })
}
