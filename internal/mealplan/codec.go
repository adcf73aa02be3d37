package mealplan

import (
	"fmt"
	"strings"
	"time"

	"nutrijournal/internal/frontmatter"
	"nutrijournal/internal/nutrition"
)

// Field names are snake_case on disk; this mapping is owned here, not by the
// document codec.
const (
	keyDate      = "date"
	keyTargets   = "targets"
	keySections  = "sections"
	keyTotals    = "totals"
	keyWellness  = "wellness"
	keyUpdatedAt = "updated_at"
)

// updatedAtLayout is RFC3339 with milliseconds, always UTC.
const updatedAtLayout = "2006-01-02T15:04:05.000Z"

// SummaryMarker names the auto-block region that carries the generated day
// summary inside the body.
const SummaryMarker = "SUMMARY"

// EncodeHeader renders the day as the front-matter mapping.
func EncodeHeader(d *Day) frontmatter.Value {
	h := frontmatter.Mapping()
	h.Set(keyDate, frontmatter.StringOf(d.Date))
	if d.Targets != nil {
		h.Set(keyTargets, totalsToValue(*d.Targets))
	}

	sections := frontmatter.SequenceOf()
	for _, s := range d.Sections {
		sections.Append(sectionToValue(s))
	}
	h.Set(keySections, sections)

	h.Set(keyTotals, totalsToValue(d.Totals))
	if d.Wellness != nil {
		h.Set(keyWellness, wellnessToValue(d.Wellness))
	}
	if !d.UpdatedAt.IsZero() {
		h.Set(keyUpdatedAt, frontmatter.StringOf(d.UpdatedAt.UTC().Format(updatedAtLayout)))
	}
	for _, f := range d.Meta {
		h.Set(f.Key, f.Value)
	}
	return h
}

// DecodeHeader rebuilds a day from a front-matter mapping. Every field is
// best-effort: anything missing or of the wrong shape falls back to its zero
// value, so a hand-edited header never blocks loading. The date argument wins
// over the header's date field, keeping the record consistent with its file
// name.
func DecodeHeader(h frontmatter.Value, date string) *Day {
	d := &Day{Date: date}

	if v, ok := h.Get(keySections); ok && v.Kind == frontmatter.KindSequence {
		for _, item := range v.Items {
			if s := sectionFromValue(item); s != nil {
				d.Sections = append(d.Sections, s)
			}
		}
	}
	if v, ok := h.Get(keyTotals); ok {
		d.Totals = totalsFromValue(v)
	}
	if v, ok := h.Get(keyTargets); ok && v.Kind == frontmatter.KindMapping {
		t := totalsFromValue(v)
		d.Targets = &t
	}
	if v, ok := h.Get(keyWellness); ok && v.Kind == frontmatter.KindMapping {
		d.Wellness = wellnessFromValue(v)
	}
	if v, ok := h.Get(keyUpdatedAt); ok && v.Kind == frontmatter.KindString {
		if ts, err := time.Parse(updatedAtLayout, v.Str); err == nil {
			d.UpdatedAt = ts
		} else if ts, err := time.Parse(time.RFC3339, v.Str); err == nil {
			d.UpdatedAt = ts
		}
	}
	for _, f := range h.Fields {
		switch f.Key {
		case keyDate, keyTargets, keySections, keyTotals, keyWellness, keyUpdatedAt:
		default:
			d.Meta = append(d.Meta, f)
		}
	}
	return d
}

func sectionToValue(s *Section) frontmatter.Value {
	v := frontmatter.Mapping()
	v.Set("id", frontmatter.StringOf(s.ID))
	if s.Name != "" {
		v.Set("title", frontmatter.StringOf(s.Name))
	} else {
		v.Set("title", frontmatter.Null())
	}
	items := frontmatter.SequenceOf()
	for _, it := range s.Items {
		items.Append(itemToValue(it))
	}
	v.Set("items", items)
	v.Set("totals", totalsToValue(s.Totals))
	return v
}

func sectionFromValue(v frontmatter.Value) *Section {
	if v.Kind != frontmatter.KindMapping {
		return nil
	}
	id := stringField(v, "id")
	if id == "" {
		return nil
	}
	s := &Section{ID: id, Name: stringField(v, "title")}
	if items, ok := v.Get("items"); ok && items.Kind == frontmatter.KindSequence {
		for _, raw := range items.Items {
			if it, ok := itemFromValue(raw); ok {
				s.Items = append(s.Items, it)
			}
		}
	}
	if t, ok := v.Get("totals"); ok {
		s.Totals = totalsFromValue(t)
	}
	return s
}

func itemToValue(it Item) frontmatter.Value {
	v := frontmatter.Mapping()
	v.Set("type", frontmatter.StringOf(string(it.Kind)))
	v.Set("ref", frontmatter.StringOf(it.Ref))
	v.Set("title", frontmatter.StringOf(it.Title))
	if it.Quantity != nil {
		v.Set("quantity", frontmatter.NumberOf(*it.Quantity))
	}
	if it.QuantityUnit != "" {
		v.Set("unit", frontmatter.StringOf(it.QuantityUnit))
	}
	if it.Servings != nil {
		v.Set("servings", frontmatter.NumberOf(*it.Servings))
	}
	if it.Source != nil {
		src := frontmatter.Mapping()
		src.Set("kind", frontmatter.StringOf(it.Source.Kind))
		if it.Source.Slug != "" {
			src.Set("slug", frontmatter.StringOf(it.Source.Slug))
		}
		if it.Source.FileName != "" {
			src.Set("file_name", frontmatter.StringOf(it.Source.FileName))
		}
		v.Set("source", src)
	}
	v.Set("nutrition", totalsToValue(it.Nutrition))
	return v
}

func itemFromValue(v frontmatter.Value) (Item, bool) {
	if v.Kind != frontmatter.KindMapping {
		return Item{}, false
	}
	it := Item{
		Kind:         ItemKind(stringField(v, "type")),
		Ref:          stringField(v, "ref"),
		Title:        stringField(v, "title"),
		QuantityUnit: stringField(v, "unit"),
	}
	if it.Kind != KindProduct && it.Kind != KindRecipe {
		return Item{}, false
	}
	it.Quantity = numberField(v, "quantity")
	it.Servings = numberField(v, "servings")
	if raw, ok := v.Get("source"); ok && raw.Kind == frontmatter.KindMapping {
		it.Source = &Source{
			Kind:     stringField(raw, "kind"),
			Slug:     stringField(raw, "slug"),
			FileName: stringField(raw, "file_name"),
		}
	}
	if raw, ok := v.Get("nutrition"); ok {
		it.Nutrition = totalsFromValue(raw)
	}
	return it, true
}

func totalsToValue(t nutrition.Totals) frontmatter.Value {
	v := frontmatter.Mapping()
	v.Set("kcal", frontmatter.NumberOf(t.Kcal))
	v.Set("protein_g", frontmatter.NumberOf(t.Protein))
	v.Set("fat_g", frontmatter.NumberOf(t.Fat))
	v.Set("carbs_g", frontmatter.NumberOf(t.Carbs))
	if t.Sugar != nil {
		v.Set("sugar_g", frontmatter.NumberOf(*t.Sugar))
	}
	if t.Fiber != nil {
		v.Set("fiber_g", frontmatter.NumberOf(*t.Fiber))
	}
	return v
}

func totalsFromValue(v frontmatter.Value) nutrition.Totals {
	t := nutrition.Zero()
	if v.Kind != frontmatter.KindMapping {
		return t
	}
	if n := numberField(v, "kcal"); n != nil {
		t.Kcal = *n
	}
	if n := numberField(v, "protein_g"); n != nil {
		t.Protein = *n
	}
	if n := numberField(v, "fat_g"); n != nil {
		t.Fat = *n
	}
	if n := numberField(v, "carbs_g"); n != nil {
		t.Carbs = *n
	}
	t.Sugar = numberField(v, "sugar_g")
	t.Fiber = numberField(v, "fiber_g")
	return t
}

func wellnessToValue(w *Wellness) frontmatter.Value {
	v := frontmatter.Mapping()
	if w.Mood != "" {
		v.Set("mood", frontmatter.StringOf(w.Mood))
	}
	if w.SleepHours != nil {
		v.Set("sleep_hours", frontmatter.NumberOf(*w.SleepHours))
	}
	if w.Steps != nil {
		v.Set("steps", frontmatter.NumberOf(*w.Steps))
	}
	if w.Notes != "" {
		v.Set("notes", frontmatter.StringOf(w.Notes))
	}
	return v
}

func wellnessFromValue(v frontmatter.Value) *Wellness {
	w := &Wellness{
		Mood:       stringField(v, "mood"),
		SleepHours: numberField(v, "sleep_hours"),
		Steps:      numberField(v, "steps"),
		Notes:      stringField(v, "notes"),
	}
	if w.Mood == "" && w.SleepHours == nil && w.Steps == nil && w.Notes == "" {
		return nil
	}
	return w
}

func stringField(v frontmatter.Value, key string) string {
	f, ok := v.Get(key)
	if !ok || f.Kind != frontmatter.KindString {
		return ""
	}
	return f.Str
}

func numberField(v frontmatter.Value, key string) *float64 {
	f, ok := v.Get(key)
	if !ok || f.Kind != frontmatter.KindNumber {
		return nil
	}
	n := f.Number
	return &n
}

// DefaultBody is the body a freshly created day file starts with.
func DefaultBody(date string) string {
	return "# Plan for " + date
}

// RenderSummary produces the markdown interior of the SUMMARY auto block:
// one heading per non-empty section with its items, then the day total.
func RenderSummary(d *Day) string {
	var sb strings.Builder
	for _, s := range d.Sections {
		if len(s.Items) == 0 {
			continue
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		sb.WriteString("## " + name + "\n")
		for _, it := range s.Items {
			sb.WriteString("- " + summaryLine(it) + "\n")
		}
	}
	sb.WriteString("## Day total\n")
	writeTotalsLines(&sb, d.Totals)
	if d.Targets != nil {
		sb.WriteString(fmt.Sprintf("**Target kcal:** %s (%s left)\n",
			frontmatter.FormatNumber(d.Targets.Kcal),
			frontmatter.FormatNumber(nutrition.Round2(d.Targets.Kcal-d.Totals.Kcal))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func summaryLine(it Item) string {
	icon := "🥣"
	if it.Kind == KindRecipe {
		icon = "🍲"
	}
	switch {
	case it.Quantity != nil:
		unit := it.QuantityUnit
		if unit == "" {
			unit = "g"
		}
		return fmt.Sprintf("%s %s — %s %s", icon, it.Title, frontmatter.FormatNumber(*it.Quantity), unit)
	case it.Servings != nil:
		return fmt.Sprintf("%s %s — %s servings", icon, it.Title, frontmatter.FormatNumber(*it.Servings))
	}
	return fmt.Sprintf("%s %s", icon, it.Title)
}

func writeTotalsLines(sb *strings.Builder, t nutrition.Totals) {
	sb.WriteString("**Kcal:** " + frontmatter.FormatNumber(t.Kcal) + "\n")
	sb.WriteString("**Protein:** " + frontmatter.FormatNumber(t.Protein) + " g\n")
	sb.WriteString("**Fat:** " + frontmatter.FormatNumber(t.Fat) + " g\n")
	sb.WriteString("**Carbs:** " + frontmatter.FormatNumber(t.Carbs) + " g\n")
	if t.Sugar != nil {
		sb.WriteString("**Sugar:** " + frontmatter.FormatNumber(*t.Sugar) + " g\n")
	}
	if t.Fiber != nil {
		sb.WriteString("**Fiber:** " + frontmatter.FormatNumber(*t.Fiber) + " g\n")
	}
}
