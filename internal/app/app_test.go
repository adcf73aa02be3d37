package app

import (
	"context"
	"testing"

	"nutrijournal/internal/catalog"
	"nutrijournal/internal/mealplan"
	"nutrijournal/internal/nutrition"
)

type fakeCatalog struct {
	products map[string]catalog.Product
	recipes  map[string]catalog.Recipe
}

func (f *fakeCatalog) Product(_ context.Context, slug string) (*catalog.Product, error) {
	if p, ok := f.products[slug]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeCatalog) Recipe(_ context.Context, slug string) (*catalog.Recipe, error) {
	if r, ok := f.recipes[slug]; ok {
		return &r, nil
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *fakeCatalog) {
	t.Helper()
	days, err := mealplan.NewRepository(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	cat := &fakeCatalog{
		products: map[string]catalog.Product{
			"oatmeal": {
				Slug: "oatmeal", Title: "Oatmeal", PortionAmount: 100, PortionUnit: "g",
				Nutrition: nutrition.Totals{Kcal: 200, Protein: 10, Fat: 6, Carbs: 54},
			},
		},
		recipes: map[string]catalog.Recipe{
			"lentil-soup": {
				Slug: "lentil-soup", Title: "Lentil Soup", Servings: 4,
				Nutrition: nutrition.Totals{Kcal: 320, Protein: 18, Fat: 9, Carbs: 40},
			},
		},
	}
	return NewService(days, cat, nil), cat
}

func TestAddProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.AddProduct(ctx, "2024-03-01", "breakfast", "oatmeal", 50); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}

	day, err := svc.Day(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if day.Totals.Kcal != 100 {
		t.Errorf("totals = %+v", day.Totals)
	}
	s := day.Section("breakfast")
	if s == nil || len(s.Items) != 1 || s.Items[0].Title != "Oatmeal" {
		t.Errorf("breakfast = %+v", s)
	}
}

func TestAddProductUnknownSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.AddProduct(ctx, "2024-03-01", "breakfast", "unobtainium", 50); err == nil {
		t.Fatalf("expected an error for an unknown slug")
	}

	// The failed add must not have touched the day.
	day, err := svc.Day(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if day.Totals.Kcal != 0 {
		t.Errorf("failed add changed the day: %+v", day.Totals)
	}
}

func TestAddRecipe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.AddRecipe(ctx, "2024-03-01", "dinner", "lentil-soup", 2); err != nil {
		t.Fatalf("AddRecipe failed: %v", err)
	}

	day, err := svc.Day(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if day.Totals.Kcal != 640 {
		t.Errorf("totals = %+v", day.Totals)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.AddProduct(ctx, "2024-03-01", "lunch", "oatmeal", 100); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	if err := svc.RemoveItem(ctx, "2024-03-01", "lunch", 0); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	// Stale references are quiet no-ops.
	if err := svc.RemoveItem(ctx, "2024-03-01", "lunch", 7); err != nil {
		t.Fatalf("stale RemoveItem should not error: %v", err)
	}

	day, err := svc.Day(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if day.Totals.Kcal != 0 || len(day.Section("lunch").Items) != 0 {
		t.Errorf("item not removed: %+v", day.Totals)
	}
}

func TestRescaleItem(t *testing.T) {
	svc, cat := newTestService(t)
	ctx := context.Background()

	if err := svc.AddProduct(ctx, "2024-03-01", "breakfast", "oatmeal", 50); err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}

	t.Run("re-resolves through the catalog", func(t *testing.T) {
		if err := svc.RescaleItem(ctx, "2024-03-01", "breakfast", 0, 150); err != nil {
			t.Fatalf("RescaleItem failed: %v", err)
		}
		day, err := svc.Day(ctx, "2024-03-01")
		if err != nil {
			t.Fatalf("Day failed: %v", err)
		}
		if day.Totals.Kcal != 300 {
			t.Errorf("totals after rescale = %+v", day.Totals)
		}
	})

	t.Run("falls back to proportional scaling when the entry is gone", func(t *testing.T) {
		delete(cat.products, "oatmeal")
		if err := svc.RescaleItem(ctx, "2024-03-01", "breakfast", 0, 75); err != nil {
			t.Fatalf("RescaleItem failed: %v", err)
		}
		day, err := svc.Day(ctx, "2024-03-01")
		if err != nil {
			t.Fatalf("Day failed: %v", err)
		}
		if day.Totals.Kcal != 150 {
			t.Errorf("totals after fallback rescale = %+v", day.Totals)
		}
	})

	t.Run("stale reference is a no-op", func(t *testing.T) {
		if err := svc.RescaleItem(ctx, "2024-03-01", "breakfast", 9, 10); err != nil {
			t.Fatalf("stale RescaleItem should not error: %v", err)
		}
	})
}

func TestSetTargetsAndWellness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	targets := nutrition.Totals{Kcal: 2000, Protein: 120, Fat: 70, Carbs: 220}
	if err := svc.SetTargets(ctx, "2024-03-01", targets); err != nil {
		t.Fatalf("SetTargets failed: %v", err)
	}
	w := mealplan.Wellness{Mood: "good", SleepHours: nutrition.Float(7.5)}
	if err := svc.LogWellness(ctx, "2024-03-01", w); err != nil {
		t.Fatalf("LogWellness failed: %v", err)
	}

	day, err := svc.Day(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if day.Targets == nil || day.Targets.Kcal != 2000 {
		t.Errorf("targets = %+v", day.Targets)
	}
	if day.Wellness == nil || day.Wellness.Mood != "good" {
		t.Errorf("wellness = %+v", day.Wellness)
	}
}
