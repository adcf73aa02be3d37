// Package app is the service facade the CLI and the bot talk to. Every
// mutation goes through the day repository's load-recompute-write cycle and
// is recorded to the mutation log best-effort.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nutrijournal/internal/catalog"
	"nutrijournal/internal/mealplan"
	"nutrijournal/internal/metrics"
	"nutrijournal/internal/nutrition"
)

// Catalog is the lookup surface the service resolves slugs against.
type Catalog interface {
	catalog.ProductLookup
	catalog.RecipeLookup
}

// Service wires the day repository, the catalog, and the mutation log.
type Service struct {
	days    *mealplan.Repository
	catalog Catalog
	metrics *metrics.Store // optional
}

// NewService creates a Service. metricsStore may be nil.
func NewService(days *mealplan.Repository, cat Catalog, metricsStore *metrics.Store) *Service {
	return &Service{days: days, catalog: cat, metrics: metricsStore}
}

// Day returns the day for date, creating an empty one on first touch.
func (s *Service) Day(ctx context.Context, date string) (*mealplan.Day, error) {
	return s.days.Load(ctx, date)
}

// AddProduct resolves slug and places quantity of the product into the
// section, creating the section on first reference.
func (s *Service) AddProduct(ctx context.Context, date, sectionID, slug string, quantity float64) error {
	p, err := s.catalog.Product(ctx, slug)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("product %q not found in catalog", slug)
	}
	return s.mutate(ctx, "add_product", date, func(d *mealplan.Day) error {
		d.AddItem(sectionID, "", mealplan.NewProductItem(*p, quantity))
		return nil
	})
}

// AddRecipe resolves slug and places a servings count of the recipe into the
// section.
func (s *Service) AddRecipe(ctx context.Context, date, sectionID, slug string, servings float64) error {
	r, err := s.catalog.Recipe(ctx, slug)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("recipe %q not found in catalog", slug)
	}
	return s.mutate(ctx, "add_recipe", date, func(d *mealplan.Day) error {
		d.AddItem(sectionID, "", mealplan.NewRecipeItem(*r, servings))
		return nil
	})
}

// RemoveItem deletes the item at index from the section. A stale reference
// is a no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, date, sectionID string, index int) error {
	return s.mutate(ctx, "remove_item", date, func(d *mealplan.Day) error {
		if !d.RemoveItem(sectionID, index) {
			slog.Debug("remove targeted a stale reference", "section", sectionID, "index", index)
		}
		return nil
	})
}

// RescaleItem re-resolves the item's catalog entry when possible and adjusts
// it to the new quantity or servings count; a vanished entry falls back to
// proportional scaling of the stored values. A stale reference is a no-op.
func (s *Service) RescaleItem(ctx context.Context, date, sectionID string, index int, amount float64) error {
	return s.mutate(ctx, "rescale_item", date, func(d *mealplan.Day) error {
		it := d.Item(sectionID, index)
		if it == nil {
			slog.Debug("rescale targeted a stale reference", "section", sectionID, "index", index)
			return nil
		}
		if it.Source != nil && it.Source.Kind == "product" {
			if p, err := s.catalog.Product(ctx, it.Source.Slug); err == nil && p != nil {
				*it = mealplan.NewProductItem(*p, amount)
				return nil
			}
		}
		if it.Source != nil && it.Source.Kind == "recipe" {
			if r, err := s.catalog.Recipe(ctx, it.Source.Slug); err == nil && r != nil {
				*it = mealplan.NewRecipeItem(*r, amount)
				return nil
			}
		}
		it.Rescale(amount)
		return nil
	})
}

// SetTargets stores the nutrition targets snapshot on the day.
func (s *Service) SetTargets(ctx context.Context, date string, targets nutrition.Totals) error {
	return s.mutate(ctx, "set_targets", date, func(d *mealplan.Day) error {
		d.Targets = &targets
		return nil
	})
}

// LogWellness stores the wellness block on the day.
func (s *Service) LogWellness(ctx context.Context, date string, w mealplan.Wellness) error {
	return s.mutate(ctx, "log_wellness", date, func(d *mealplan.Day) error {
		d.Wellness = &w
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, operation, date string, op func(*mealplan.Day) error) error {
	start := time.Now()
	day, err := s.days.Mutate(ctx, date, op)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		m := metrics.MutationMetric{
			Operation: operation,
			Date:      day.Date,
			Duration:  time.Since(start),
		}
		if err := s.metrics.Record(ctx, m); err != nil {
			slog.Warn("failed to record mutation metric", "operation", operation, "error", err)
		}
	}
	return nil
}
