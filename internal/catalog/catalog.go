// Package catalog provides the product and recipe lookups the journal draws
// from when an entry is added to a day.
package catalog

import (
	"context"

	"nutrijournal/internal/nutrition"
)

// Product is one food with macros declared per portion.
type Product struct {
	Slug          string           `json:"slug"`
	Title         string           `json:"title"`
	PortionAmount float64          `json:"portion_amount"`
	PortionUnit   string           `json:"portion_unit"`
	Nutrition     nutrition.Totals `json:"nutrition"`
}

// Recipe is one dish with macros declared per serving.
type Recipe struct {
	Slug      string           `json:"slug"`
	Title     string           `json:"title"`
	Servings  float64          `json:"servings"`
	Nutrition nutrition.Totals `json:"nutrition"`
	SourceURL string           `json:"source_url,omitempty"`
}

// ProductLookup resolves a product by slug. A missing slug yields (nil, nil).
type ProductLookup interface {
	Product(ctx context.Context, slug string) (*Product, error)
}

// RecipeLookup resolves a recipe by slug. A missing slug yields (nil, nil).
type RecipeLookup interface {
	Recipe(ctx context.Context, slug string) (*Recipe, error)
}
