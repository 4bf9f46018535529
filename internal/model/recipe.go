package model

import (
	"time"
)

// Recipe is a page in the recipes database.
type Recipe struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date,omitzero"`
}

// IngredientRow is one line of a recipe's ingredient table.
type IngredientRow struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// MasterIngredient is an entry of the master ingredient catalog. Category is
// empty when the ingredient has not been classified.
type MasterIngredient struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}
