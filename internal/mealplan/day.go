// Package mealplan holds the day/section/item tree, its aggregation rules,
// and the file-per-date repository that persists it.
package mealplan

import (
	"time"

	"nutrijournal/internal/catalog"
	"nutrijournal/internal/frontmatter"
	"nutrijournal/internal/nutrition"
)

// ItemKind distinguishes a product portion from a recipe serving.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindRecipe  ItemKind = "recipe"
)

// Source records where an item came from, for later re-resolution.
type Source struct {
	Kind     string
	Slug     string
	FileName string
}

// Item is one product portion or one recipe serving placed into a section.
// An item is owned by exactly one section and carries its already-scaled
// nutrition contribution.
type Item struct {
	Kind         ItemKind
	Ref          string
	Title        string
	Quantity     *float64
	QuantityUnit string
	Servings     *float64
	Nutrition    nutrition.Totals
	Source       *Source
}

// Section is a named bucket within a day holding an ordered list of items.
// Totals always equal the additive fold over the items; they are recomputed,
// never patched.
type Section struct {
	ID     string
	Name   string
	Items  []Item
	Totals nutrition.Totals
}

// Wellness is the optional mood/sleep/steps/notes block of a day.
type Wellness struct {
	Mood       string
	SleepHours *float64
	Steps      *float64
	Notes      string
}

// Day is the full record behind one {date}.md file.
type Day struct {
	Date      string // YYYY-MM-DD
	Sections  []*Section
	Totals    nutrition.Totals
	Targets   *nutrition.Totals
	Wellness  *Wellness
	UpdatedAt time.Time
	// Meta keeps unrecognized header keys so a hand-added field survives the
	// save cycle.
	Meta []frontmatter.Field

	// body is the prose part of the backing document, carried through a
	// load-mutate-write cycle so user notes around the summary block survive.
	body string
}

// Body returns the prose part of the day's document.
func (d *Day) Body() string {
	return d.body
}

// DefaultSectionIDs are the sections a freshly created day starts with.
var DefaultSectionIDs = []string{"breakfast", "lunch", "snack", "dinner"}

// NewDay returns an empty day for date with the default sections and zero
// totals.
func NewDay(date string) *Day {
	d := &Day{Date: date}
	for _, id := range DefaultSectionIDs {
		d.Sections = append(d.Sections, &Section{ID: id})
	}
	return d
}

// Section returns the section with the given id, or nil.
func (d *Day) Section(id string) *Section {
	for _, s := range d.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// EnsureSection returns the section with the given id, appending a new one
// with the optional display name on first reference. Sections are never
// implicitly deleted, even when emptied.
func (d *Day) EnsureSection(id, name string) *Section {
	if s := d.Section(id); s != nil {
		if s.Name == "" && name != "" {
			s.Name = name
		}
		return s
	}
	s := &Section{ID: id, Name: name}
	d.Sections = append(d.Sections, s)
	return s
}

// AddItem places item into the section with the given id, creating the
// section on first reference.
func (d *Day) AddItem(sectionID, sectionName string, item Item) {
	s := d.EnsureSection(sectionID, sectionName)
	s.Items = append(s.Items, item)
}

// RemoveItem deletes the item at index from the section. A stale section id
// or index is a no-op: it indicates an out-of-date caller reference, not
// corruption. Reports whether anything was removed.
func (d *Day) RemoveItem(sectionID string, index int) bool {
	s := d.Section(sectionID)
	if s == nil || index < 0 || index >= len(s.Items) {
		return false
	}
	s.Items = append(s.Items[:index], s.Items[index+1:]...)
	return true
}

// Item returns the item at index in the section, or nil when the reference
// is stale.
func (d *Day) Item(sectionID string, index int) *Item {
	s := d.Section(sectionID)
	if s == nil || index < 0 || index >= len(s.Items) {
		return nil
	}
	return &s.Items[index]
}

// Recalculate recomputes every section's totals from its items, then the day
// totals from the sections. It is the single source of truth for totals and
// must run after every structural mutation, before serialization.
func (d *Day) Recalculate() {
	dayTotals := nutrition.Zero()
	for _, s := range d.Sections {
		s.Recalculate()
		dayTotals = nutrition.Add(dayTotals, s.Totals)
	}
	d.Totals = dayTotals
}

// Recalculate folds the items' nutrition into the section totals.
func (s *Section) Recalculate() {
	totals := nutrition.Zero()
	for _, it := range s.Items {
		totals = nutrition.Add(totals, it.Nutrition)
	}
	s.Totals = totals
}

// NewProductItem builds an item for quantity of a product, scaling the
// per-portion macros by quantity against the declared portion size.
func NewProductItem(p catalog.Product, quantity float64) Item {
	factor := nutrition.ScaleFactor(quantity, p.PortionAmount)
	return Item{
		Kind:         KindProduct,
		Ref:          "product:" + p.Slug,
		Title:        p.Title,
		Quantity:     nutrition.Float(quantity),
		QuantityUnit: p.PortionUnit,
		Nutrition:    nutrition.Scale(p.Nutrition, factor),
		Source:       &Source{Kind: "product", Slug: p.Slug},
	}
}

// NewRecipeItem builds an item for a servings count of a recipe. Recipe
// macros are declared per serving, so the reference quantity is 1.
func NewRecipeItem(r catalog.Recipe, servings float64) Item {
	factor := nutrition.ScaleFactor(servings, 1)
	return Item{
		Kind:      KindRecipe,
		Ref:       "recipe:" + r.Slug,
		Title:     r.Title,
		Servings:  nutrition.Float(servings),
		Nutrition: nutrition.Scale(r.Nutrition, factor),
		Source:    &Source{Kind: "recipe", Slug: r.Slug},
	}
}

// Rescale adjusts an existing item to a new quantity or servings count by
// scaling its current nutrition proportionally against the current value.
// Used when the catalog entry behind the item is no longer available.
func (it *Item) Rescale(requested float64) {
	var current float64
	switch {
	case it.Quantity != nil:
		current = *it.Quantity
	case it.Servings != nil:
		current = *it.Servings
	}
	factor := nutrition.ScaleFactor(requested, current)
	it.Nutrition = nutrition.Scale(it.Nutrition, factor)
	if it.Quantity != nil {
		it.Quantity = nutrition.Float(requested)
	} else {
		it.Servings = nutrition.Float(requested)
	}
}
