package suggest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"nutrijournal/internal/catalog"
	"nutrijournal/internal/nutrition"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

type fakeCatalog struct {
	products []catalog.Product
	recipes  []catalog.Recipe
}

func (f *fakeCatalog) ListProducts(context.Context) ([]catalog.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) ListRecipes(context.Context) ([]catalog.Recipe, error) {
	return f.recipes, nil
}

type journalCall struct {
	date, section, kind, slug string
	amount                    float64
}

type fakeJournal struct {
	calls   []journalCall
	failFor string
}

func (f *fakeJournal) AddProduct(_ context.Context, date, sectionID, slug string, quantity float64) error {
	if slug == f.failFor {
		return fmt.Errorf("%q not found in catalog", slug)
	}
	f.calls = append(f.calls, journalCall{date, sectionID, "product", slug, quantity})
	return nil
}

func (f *fakeJournal) AddRecipe(_ context.Context, date, sectionID, slug string, servings float64) error {
	if slug == f.failFor {
		return fmt.Errorf("%q not found in catalog", slug)
	}
	f.calls = append(f.calls, journalCall{date, sectionID, "recipe", slug, servings})
	return nil
}

func stockedCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: []catalog.Product{
			{Slug: "oatmeal", Title: "Oatmeal", PortionAmount: 100, PortionUnit: "g",
				Nutrition: nutrition.Totals{Kcal: 200}},
		},
		recipes: []catalog.Recipe{
			{Slug: "lentil-soup", Title: "Lentil Soup", Servings: 4,
				Nutrition: nutrition.Totals{Kcal: 320}},
		},
	}
}

func TestSuggestDay(t *testing.T) {
	gen := &fakeGenerator{response: `[
		{"section": "breakfast", "type": "product", "slug": "oatmeal", "quantity": 60},
		{"section": "lunch", "type": "recipe", "slug": "lentil-soup", "servings": 2}
	]`}
	journal := &fakeJournal{}
	planner := NewPlanner(stockedCatalog(), gen, journal)

	applied, err := planner.SuggestDay(context.Background(), "2024-03-01", 2000)
	if err != nil {
		t.Fatalf("SuggestDay failed: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if len(journal.calls) != 2 {
		t.Fatalf("calls = %+v", journal.calls)
	}
	if c := journal.calls[0]; c.kind != "product" || c.slug != "oatmeal" || c.amount != 60 || c.section != "breakfast" {
		t.Errorf("first call = %+v", c)
	}
	if c := journal.calls[1]; c.kind != "recipe" || c.slug != "lentil-soup" || c.amount != 2 {
		t.Errorf("second call = %+v", c)
	}

	// The prompt shows the catalog and the target.
	if !strings.Contains(gen.prompt, "slug=oatmeal") || !strings.Contains(gen.prompt, "slug=lentil-soup") {
		t.Errorf("catalog missing from prompt:\n%s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "2000 kcal") {
		t.Errorf("target missing from prompt:\n%s", gen.prompt)
	}
}

func TestSuggestDayFencedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n[{\"section\": \"snack\", \"type\": \"product\", \"slug\": \"oatmeal\", \"quantity\": 30}]\n```"}
	journal := &fakeJournal{}
	planner := NewPlanner(stockedCatalog(), gen, journal)

	applied, err := planner.SuggestDay(context.Background(), "2024-03-01", 0)
	if err != nil {
		t.Fatalf("SuggestDay failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
}

func TestSuggestDaySkipsUnresolvable(t *testing.T) {
	gen := &fakeGenerator{response: `[
		{"section": "breakfast", "type": "product", "slug": "invented-by-model", "quantity": 50},
		{"section": "lunch", "type": "beverage", "slug": "oatmeal"},
		{"section": "", "type": "product", "slug": "oatmeal", "quantity": 50},
		{"section": "dinner", "type": "product", "slug": "oatmeal", "quantity": 50}
	]`}
	journal := &fakeJournal{failFor: "invented-by-model"}
	planner := NewPlanner(stockedCatalog(), gen, journal)

	applied, err := planner.SuggestDay(context.Background(), "2024-03-01", 0)
	if err != nil {
		t.Fatalf("SuggestDay failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1 (only the last entry is valid)", applied)
	}
	if len(journal.calls) != 1 || journal.calls[0].section != "dinner" {
		t.Errorf("calls = %+v", journal.calls)
	}
}

func TestSuggestDayEmptyCatalog(t *testing.T) {
	planner := NewPlanner(&fakeCatalog{}, &fakeGenerator{}, &fakeJournal{})
	if _, err := planner.SuggestDay(context.Background(), "2024-03-01", 0); err == nil {
		t.Fatalf("expected an error for an empty catalog")
	}
}

func TestSuggestDayMalformedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "I think you should eat more vegetables."}
	planner := NewPlanner(stockedCatalog(), gen, &fakeJournal{})
	if _, err := planner.SuggestDay(context.Background(), "2024-03-01", 0); err == nil {
		t.Fatalf("expected a parse error for a prose response")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"[1]", "[1]"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  \n[1]\n  ", "[1]"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
