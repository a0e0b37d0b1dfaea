// Package scale recomputes displayed ingredient quantities.
//
// Two modes exist. Servings scaling re-renders every input from the
// immutable baseline and resets each input's anchor. Single-ingredient
// scaling derives a factor from one edited input and its anchor, then
// rewrites every other input from its own anchor; anchors are read but never
// written. All rounding goes through [Round2].
package scale

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Input is one displayed ingredient field: the text it shows and the anchor
// quantity captured at its last full render.
type Input struct {
	Value  string
	Anchor float64
}

// Round2 rounds x half away from zero to two decimal places and renders it
// fixed-point, e.g. 150 -> "150.00". NaN and infinities have no decimal
// form and render as strconv does; the scaling functions never pass them.
func Round2(x float64) string {
	if !finite(x) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return decimal.NewFromFloat(x).StringFixed(2)
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// FormatBaseline renders a baseline quantity the way a fresh render shows
// it: shortest exact form, no forced decimals.
func FormatBaseline(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// ParseQuantity parses a typed number. Empty, non-numeric, NaN and infinite
// input is rejected.
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Baseline renders the unscaled ingredient list. Each anchor is the
// ingredient's baseline quantity.
func Baseline(ings []domain.Ingredient) []Input {
	out := make([]Input, len(ings))
	for i, ing := range ings {
		out[i] = Input{Value: FormatBaseline(ing.Quantity), Anchor: ing.Quantity}
	}
	return out
}

// ServingsFactor returns target / original, treating a non-positive
// original as one.
func ServingsFactor(original, target float64) float64 {
	if original <= 0 {
		original = 1
	}
	return target / original
}

// ByServings renders every ingredient as Round2(baseline * factor). The
// returned list replaces the displayed one wholesale; each anchor becomes
// the quantity now on display. ok is false, and out nil, when the factor or
// any product overflows float64.
func ByServings(ings []domain.Ingredient, factor float64) (out []Input, ok bool) {
	if !finite(factor) {
		return nil, false
	}
	out = make([]Input, len(ings))
	for i, ing := range ings {
		q := ing.Quantity * factor
		if !finite(q) {
			return nil, false
		}
		v := Round2(q)
		anchor, _ := strconv.ParseFloat(v, 64)
		out[i] = Input{Value: v, Anchor: anchor}
	}
	return out, true
}

// ByIngredient applies an edit of input idx to typed. The edited input keeps
// typed verbatim. When typed parses and the edited anchor is non-zero,
// every other input becomes Round2(its anchor * typed/anchor). Otherwise the
// other inputs are returned untouched and ok is false, as they are when
// the factor or any product overflows float64. The argument slice is never
// modified.
func ByIngredient(inputs []Input, idx int, typed string) (out []Input, ok bool) {
	out = make([]Input, len(inputs))
	copy(out, inputs)
	if idx < 0 || idx >= len(out) {
		return out, false
	}
	out[idx].Value = typed

	v, parsed := ParseQuantity(typed)
	anchor := inputs[idx].Anchor
	if !parsed || anchor == 0 {
		return out, false
	}

	factor := v / anchor
	if !finite(factor) {
		return out, false
	}
	scaled := make([]float64, len(out))
	for i := range out {
		if i == idx {
			continue
		}
		if scaled[i] = out[i].Anchor * factor; !finite(scaled[i]) {
			return out, false
		}
	}
	for i := range out {
		if i != idx {
			out[i].Value = Round2(scaled[i])
		}
	}
	return out, true
}
