package model

import (
	"github.com/samber/lo"
)

// Category is a named section of the shopping list.
type Category struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// Catalog groups master ingredients by category. Categories and the
// ingredients within them keep the order in which they were first seen.
type Catalog struct {
	Categories []Category
	byName     map[string]string
}

// NewCatalog buckets items by category. Items without a category go under
// unclassified.
func NewCatalog(items []MasterIngredient, unclassified string) *Catalog {
	categoryOf := func(m MasterIngredient) string {
		if m.Category == "" {
			return unclassified
		}
		return m.Category
	}

	groups := lo.GroupBy(items, categoryOf)
	order := lo.Uniq(lo.Map(items, func(m MasterIngredient, _ int) string { return categoryOf(m) }))

	c := &Catalog{
		Categories: make([]Category, 0, len(order)),
		byName:     make(map[string]string, len(items)),
	}
	for _, name := range order {
		c.Categories = append(c.Categories, Category{
			Name:        name,
			Ingredients: lo.Map(groups[name], func(m MasterIngredient, _ int) string { return m.Name }),
		})
	}
	for _, m := range items {
		if _, seen := c.byName[m.Name]; !seen {
			c.byName[m.Name] = categoryOf(m)
		}
	}
	return c
}

// CategoryOf returns the category of an ingredient and whether it is in the catalog.
func (c *Catalog) CategoryOf(ingredient string) (string, bool) {
	cat, ok := c.byName[ingredient]
	return cat, ok
}

// Missing returns the shopping list ingredients that have no catalog entry,
// sorted by name. These never appear in an export.
func (c *Catalog) Missing(l ShoppingList) []string {
	return lo.Filter(l.Names(), func(name string, _ int) bool {
		_, ok := c.CategoryOf(name)
		return !ok
	})
}
