// Package importer pulls recipes from public web pages into the catalog.
// It reads the schema.org Recipe object most recipe sites embed as JSON-LD,
// so no scraping heuristics or external services are involved.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"nutrijournal/internal/catalog"
	"nutrijournal/internal/nutrition"
)

// CatalogWriter is the part of the catalog the importer needs.
type CatalogWriter interface {
	SaveRecipe(ctx context.Context, rec catalog.Recipe) error
}

// Importer fetches and extracts recipes from URLs.
type Importer struct {
	store  CatalogWriter
	client *http.Client
}

// New creates an Importer writing into store.
func New(store CatalogWriter) *Importer {
	return &Importer{
		store:  store,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// ldRecipe mirrors the parts of a schema.org Recipe object we consume.
type ldRecipe struct {
	Type        any          `json:"@type"`
	Name        string       `json:"name"`
	RecipeYield any          `json:"recipeYield"`
	Nutrition   *ldNutrition `json:"nutrition"`
}

type ldNutrition struct {
	Calories     string `json:"calories"`
	Protein      string `json:"proteinContent"`
	Fat          string `json:"fatContent"`
	Carbohydrate string `json:"carbohydrateContent"`
	Sugar        string `json:"sugarContent"`
	Fiber        string `json:"fiberContent"`
}

// ImportURL fetches the page, extracts the embedded recipe, and saves it to
// the catalog. Returns the saved recipe.
func (im *Importer) ImportURL(ctx context.Context, url string) (*catalog.Recipe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	ld, err := findRecipeLD(doc)
	if err != nil {
		return nil, err
	}

	rec := recipeFromLD(ld, url)
	if err := im.store.SaveRecipe(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save imported recipe: %w", err)
	}
	return &rec, nil
}

// findRecipeLD scans every JSON-LD script on the page for a Recipe object,
// looking inside @graph wrappers and top-level arrays.
func findRecipeLD(doc *goquery.Document) (*ldRecipe, error) {
	var found *ldRecipe
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true // malformed block, keep looking
		}
		if r := searchRecipe(raw); r != nil {
			found = r
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("no schema.org recipe found on page")
	}
	return found, nil
}

func searchRecipe(raw any) *ldRecipe {
	switch node := raw.(type) {
	case []any:
		for _, item := range node {
			if r := searchRecipe(item); r != nil {
				return r
			}
		}
	case map[string]any:
		if isRecipeType(node["@type"]) {
			data, err := json.Marshal(node)
			if err != nil {
				return nil
			}
			var r ldRecipe
			if err := json.Unmarshal(data, &r); err != nil || r.Name == "" {
				return nil
			}
			return &r
		}
		if graph, ok := node["@graph"]; ok {
			return searchRecipe(graph)
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func recipeFromLD(ld *ldRecipe, url string) catalog.Recipe {
	rec := catalog.Recipe{
		Slug:      Slugify(ld.Name),
		Title:     ld.Name,
		Servings:  parseYield(ld.RecipeYield),
		SourceURL: url,
	}
	if ld.Nutrition != nil {
		rec.Nutrition = nutritionFromLD(*ld.Nutrition)
	}
	return rec
}

// nutritionFromLD maps per-serving schema.org nutrition strings ("150
// calories", "5 g") into totals. Unparseable optional fields are simply left
// absent.
func nutritionFromLD(n ldNutrition) nutrition.Totals {
	t := nutrition.Zero()
	if v, ok := parseAmount(n.Calories); ok {
		t.Kcal = v
	}
	if v, ok := parseAmount(n.Protein); ok {
		t.Protein = v
	}
	if v, ok := parseAmount(n.Fat); ok {
		t.Fat = v
	}
	if v, ok := parseAmount(n.Carbohydrate); ok {
		t.Carbs = v
	}
	if v, ok := parseAmount(n.Sugar); ok {
		t.Sugar = nutrition.Float(v)
	}
	if v, ok := parseAmount(n.Fiber); ok {
		t.Fiber = nutrition.Float(v)
	}
	return t
}

var amountPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

func parseAmount(s string) (float64, bool) {
	match := amountPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseYield handles the string, number, and array forms recipeYield shows
// up in. Defaults to 1 so per-serving math never divides by zero.
func parseYield(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		if v > 0 {
			return v
		}
	case string:
		if n, ok := parseAmount(v); ok && n > 0 {
			return n
		}
	case []any:
		for _, item := range v {
			if n := parseYield(item); n != 1 {
				return n
			}
		}
	}
	return 1
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a title into a stable catalog slug.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
