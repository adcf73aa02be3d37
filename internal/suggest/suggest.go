// Package suggest drafts a day plan with the LLM and applies it through the
// journal. The model only ever picks from catalog slugs it was shown;
// anything else it invents is skipped.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"nutrijournal/internal/catalog"
	"nutrijournal/internal/llm"
)

// Journal is the part of the application the planner applies entries through.
type Journal interface {
	AddProduct(ctx context.Context, date, sectionID, slug string, quantity float64) error
	AddRecipe(ctx context.Context, date, sectionID, slug string, servings float64) error
}

// Catalog lists the entries the model may choose from.
type Catalog interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListRecipes(ctx context.Context) ([]catalog.Recipe, error)
}

// Planner generates and applies day suggestions.
type Planner struct {
	catalog Catalog
	gen     llm.TextGenerator
	journal Journal
}

// NewPlanner creates a Planner.
func NewPlanner(cat Catalog, gen llm.TextGenerator, journal Journal) *Planner {
	return &Planner{catalog: cat, gen: gen, journal: journal}
}

// entry is one line of the model's JSON answer.
type entry struct {
	Section  string  `json:"section"`
	Type     string  `json:"type"`
	Slug     string  `json:"slug"`
	Quantity float64 `json:"quantity,omitempty"`
	Servings float64 `json:"servings,omitempty"`
}

// SuggestDay asks the model for a plan over the current catalog and applies
// every resolvable entry to the given date. Returns how many entries were
// applied.
func (p *Planner) SuggestDay(ctx context.Context, date string, kcalTarget float64) (int, error) {
	products, err := p.catalog.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list products: %w", err)
	}
	recipes, err := p.catalog.ListRecipes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	if len(products) == 0 && len(recipes) == 0 {
		return 0, fmt.Errorf("catalog is empty, nothing to plan with")
	}

	raw, err := p.gen.GenerateContent(ctx, buildPrompt(products, recipes, kcalTarget))
	if err != nil {
		return 0, fmt.Errorf("suggestion generation failed: %w", err)
	}

	var entries []entry
	if err := json.Unmarshal([]byte(stripFences(raw)), &entries); err != nil {
		return 0, fmt.Errorf("failed to parse suggestion response: %w. Response: %s", err, raw)
	}

	applied := 0
	for _, e := range entries {
		if e.Section == "" || e.Slug == "" {
			continue
		}
		var applyErr error
		switch e.Type {
		case "product":
			applyErr = p.journal.AddProduct(ctx, date, e.Section, e.Slug, e.Quantity)
		case "recipe":
			applyErr = p.journal.AddRecipe(ctx, date, e.Section, e.Slug, e.Servings)
		default:
			continue
		}
		if applyErr != nil {
			slog.Warn("skipping suggested entry", "slug", e.Slug, "error", applyErr)
			continue
		}
		applied++
	}
	return applied, nil
}

func buildPrompt(products []catalog.Product, recipes []catalog.Recipe, kcalTarget float64) string {
	var sb strings.Builder
	sb.WriteString("You are a nutrition planner. Compose one day of meals from the entries below.\n")
	if kcalTarget > 0 {
		fmt.Fprintf(&sb, "Aim for roughly %.0f kcal in total.\n", kcalTarget)
	}
	sb.WriteString("\nProducts (macros per portion):\n")
	for _, p := range products {
		fmt.Fprintf(&sb, "- slug=%s title=%q portion=%.0f%s kcal=%.0f\n",
			p.Slug, p.Title, p.PortionAmount, p.PortionUnit, p.Nutrition.Kcal)
	}
	sb.WriteString("\nRecipes (macros per serving):\n")
	for _, r := range recipes {
		fmt.Fprintf(&sb, "- slug=%s title=%q kcal=%.0f\n", r.Slug, r.Title, r.Nutrition.Kcal)
	}
	sb.WriteString(`
Return strictly a JSON array, no prose, with this element shape:
{"section": "breakfast|lunch|snack|dinner", "type": "product|recipe", "slug": "...", "quantity": <number, products only>, "servings": <number, recipes only>}
Use only slugs listed above.`)
	return sb.String()
}

// stripFences removes a markdown code fence the model may wrap the JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
