package mealplan

import (
	"testing"

	"nutrijournal/internal/catalog"
	"nutrijournal/internal/nutrition"
)

func oatmeal() catalog.Product {
	return catalog.Product{
		Slug:          "oatmeal",
		Title:         "Oatmeal",
		PortionAmount: 100,
		PortionUnit:   "g",
		Nutrition: nutrition.Totals{
			Kcal: 200, Protein: 10, Fat: 6, Carbs: 54,
			Sugar: nutrition.Float(4), Fiber: nutrition.Float(8),
		},
	}
}

func TestNewDay(t *testing.T) {
	d := NewDay("2024-03-01")
	if len(d.Sections) != 4 {
		t.Fatalf("expected 4 default sections, got %d", len(d.Sections))
	}
	for i, id := range []string{"breakfast", "lunch", "snack", "dinner"} {
		if d.Sections[i].ID != id {
			t.Errorf("section %d = %q, want %q", i, d.Sections[i].ID, id)
		}
	}
	d.Recalculate()
	if d.Totals.Kcal != 0 || d.Totals.Protein != 0 {
		t.Errorf("empty day should have zero totals: %+v", d.Totals)
	}
}

func TestAddProductScaling(t *testing.T) {
	// Half of a 100 g portion with 200 kcal per portion yields 100 kcal.
	d := NewDay("2024-03-01")
	d.AddItem("breakfast", "", NewProductItem(oatmeal(), 50))
	d.Recalculate()

	s := d.Section("breakfast")
	if len(s.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(s.Items))
	}
	it := s.Items[0]
	if it.Nutrition.Kcal != 100 || it.Nutrition.Protein != 5 || it.Nutrition.Fat != 3 || it.Nutrition.Carbs != 27 {
		t.Errorf("item nutrition = %+v", it.Nutrition)
	}
	if it.Nutrition.Sugar == nil || *it.Nutrition.Sugar != 2 {
		t.Errorf("sugar = %+v", it.Nutrition.Sugar)
	}
	if it.Ref != "product:oatmeal" || it.Kind != KindProduct {
		t.Errorf("item identity wrong: %+v", it)
	}
	if it.Quantity == nil || *it.Quantity != 50 || it.QuantityUnit != "g" {
		t.Errorf("item quantity wrong: %+v", it)
	}

	// Section totals equal the single item; day totals equal the section.
	if s.Totals.Kcal != it.Nutrition.Kcal || s.Totals.Protein != it.Nutrition.Protein ||
		s.Totals.Fat != it.Nutrition.Fat || s.Totals.Carbs != it.Nutrition.Carbs {
		t.Errorf("section totals %+v != item nutrition %+v", s.Totals, it.Nutrition)
	}
	if d.Totals.Kcal != 100 || d.Totals.Protein != 5 {
		t.Errorf("day totals = %+v", d.Totals)
	}
}

func TestRecipeScaling(t *testing.T) {
	rec := catalog.Recipe{
		Slug:     "lentil-soup",
		Title:    "Lentil Soup",
		Servings: 4,
		Nutrition: nutrition.Totals{
			Kcal: 320, Protein: 18, Fat: 9, Carbs: 40,
		},
	}
	it := NewRecipeItem(rec, 2)
	if it.Nutrition.Kcal != 640 || it.Nutrition.Protein != 36 {
		t.Errorf("2 servings should double per-serving macros: %+v", it.Nutrition)
	}
	if it.Servings == nil || *it.Servings != 2 {
		t.Errorf("servings = %+v", it.Servings)
	}
}

func TestAggregationAdditivity(t *testing.T) {
	d := NewDay("2024-03-01")
	d.AddItem("breakfast", "", NewProductItem(oatmeal(), 100))
	d.AddItem("breakfast", "", NewProductItem(oatmeal(), 50))
	d.AddItem("lunch", "", NewProductItem(oatmeal(), 25))
	d.Recalculate()

	breakfast := d.Section("breakfast")
	want := nutrition.Zero()
	for _, it := range breakfast.Items {
		want = nutrition.Add(want, it.Nutrition)
	}
	if breakfast.Totals.Kcal != want.Kcal || breakfast.Totals.Carbs != want.Carbs {
		t.Errorf("section totals %+v != fold %+v", breakfast.Totals, want)
	}

	dayWant := nutrition.Zero()
	for _, s := range d.Sections {
		dayWant = nutrition.Add(dayWant, s.Totals)
	}
	if d.Totals.Kcal != dayWant.Kcal {
		t.Errorf("day totals %+v != fold %+v", d.Totals, dayWant)
	}

	// Recalculate is idempotent.
	before := d.Totals
	d.Recalculate()
	if d.Totals.Kcal != before.Kcal || d.Totals.Protein != before.Protein {
		t.Errorf("recalculate is not idempotent: %+v vs %+v", before, d.Totals)
	}
}

func TestEnsureSection(t *testing.T) {
	d := NewDay("2024-03-01")

	s := d.EnsureSection("second-breakfast", "Second Breakfast")
	if len(d.Sections) != 5 {
		t.Fatalf("expected a 5th section, got %d", len(d.Sections))
	}
	if s.Name != "Second Breakfast" {
		t.Errorf("name = %q", s.Name)
	}

	again := d.EnsureSection("second-breakfast", "")
	if again != s {
		t.Errorf("second lookup created a duplicate")
	}
	if len(d.Sections) != 5 {
		t.Errorf("duplicate section appended")
	}
}

func TestRemoveItem(t *testing.T) {
	d := NewDay("2024-03-01")
	d.AddItem("lunch", "", NewProductItem(oatmeal(), 100))
	d.Recalculate()

	t.Run("stale references are no-ops", func(t *testing.T) {
		if d.RemoveItem("nope", 0) {
			t.Errorf("unknown section should be a no-op")
		}
		if d.RemoveItem("lunch", 5) {
			t.Errorf("out-of-range index should be a no-op")
		}
		if d.RemoveItem("lunch", -1) {
			t.Errorf("negative index should be a no-op")
		}
		if len(d.Section("lunch").Items) != 1 {
			t.Errorf("no-op removed something")
		}
	})

	t.Run("removal empties section but keeps it", func(t *testing.T) {
		if !d.RemoveItem("lunch", 0) {
			t.Fatalf("expected removal to succeed")
		}
		d.Recalculate()
		s := d.Section("lunch")
		if s == nil {
			t.Fatalf("emptied section was deleted")
		}
		if len(s.Items) != 0 || s.Totals.Kcal != 0 {
			t.Errorf("section not emptied: %+v", s)
		}
		if d.Totals.Kcal != 0 {
			t.Errorf("day totals not zeroed: %+v", d.Totals)
		}
	})
}

func TestItemRescale(t *testing.T) {
	it := NewProductItem(oatmeal(), 100)
	it.Rescale(50)
	if it.Nutrition.Kcal != 100 {
		t.Errorf("kcal after rescale = %v, want 100", it.Nutrition.Kcal)
	}
	if it.Quantity == nil || *it.Quantity != 50 {
		t.Errorf("quantity after rescale = %+v", it.Quantity)
	}
}
