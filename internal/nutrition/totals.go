// Package nutrition holds the additive macro totals and the arithmetic the
// aggregation engine is built on. Every accumulation step rounds to 2 decimal
// places immediately, so repeated load-modify-save cycles never drift beyond
// one rounding step per save. Persisted files already reflect this rounding;
// deferring it to display time would make stored totals disagree with
// recomputed ones.
package nutrition

import "math"

// Totals is the additive macro sum carried by items, sections and days.
// Sugar and Fiber are optional: not every product declares them.
type Totals struct {
	Kcal    float64  `json:"kcal"`
	Protein float64  `json:"protein_g"`
	Fat     float64  `json:"fat_g"`
	Carbs   float64  `json:"carbs_g"`
	Sugar   *float64 `json:"sugar_g,omitempty"`
	Fiber   *float64 `json:"fiber_g,omitempty"`
}

// Zero returns all-zero totals with sugar and fiber absent.
func Zero() Totals {
	return Totals{}
}

// Round2 rounds to 2 decimal places, the resolution every accumulation step
// uses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Add returns the field-wise sum of a and b, each field rounded at the point
// of accumulation. An optional field stays absent only when absent on both
// sides; otherwise the absent side counts as zero.
func Add(a, b Totals) Totals {
	return Totals{
		Kcal:    Round2(a.Kcal + b.Kcal),
		Protein: Round2(a.Protein + b.Protein),
		Fat:     Round2(a.Fat + b.Fat),
		Carbs:   Round2(a.Carbs + b.Carbs),
		Sugar:   addOptional(a.Sugar, b.Sugar),
		Fiber:   addOptional(a.Fiber, b.Fiber),
	}
}

// Scale returns totals multiplied by factor, with the same rounding rule.
// Absent optional fields stay absent.
func Scale(t Totals, factor float64) Totals {
	return Totals{
		Kcal:    Round2(t.Kcal * factor),
		Protein: Round2(t.Protein * factor),
		Fat:     Round2(t.Fat * factor),
		Carbs:   Round2(t.Carbs * factor),
		Sugar:   scaleOptional(t.Sugar, factor),
		Fiber:   scaleOptional(t.Fiber, factor),
	}
}

// ScaleFactor derives the multiplier for a requested quantity against a
// reference portion. A non-positive reference must not divide: the requested
// quantity is then taken as already expressed in the reference unit, and when
// both are non-positive the factor is 1.
func ScaleFactor(requested, reference float64) float64 {
	if reference > 0 {
		return requested / reference
	}
	if requested > 0 {
		return requested
	}
	return 1
}

// Float returns a pointer to v, for filling the optional fields.
func Float(v float64) *float64 {
	return &v
}

func addOptional(a, b *float64) *float64 {
	if a == nil && b == nil {
		return nil
	}
	var av, bv float64
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return Float(Round2(av + bv))
}

func scaleOptional(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(Round2(*v * factor))
}
