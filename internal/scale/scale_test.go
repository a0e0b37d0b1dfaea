package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150, "150.00"},
		{0, "0.00"},
		{1.005, "1.01"},
		{2.675, "2.68"},
		{0.125, "0.13"},
		{-0.125, "-0.13"},
		{33.333333, "33.33"},
		{math.Inf(1), "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"75", 75, true},
		{" 1.5 ", 1.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseQuantity(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestByServings(t *testing.T) {
	ings := []domain.Ingredient{{Name: "flour", Quantity: 100}}

	got, ok := ByServings(ings, ServingsFactor(2, 3))
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "150.00", got[0].Value)
	assert.Equal(t, 150.0, got[0].Anchor)
	assert.Equal(t, 100.0, ings[0].Quantity, "baseline must not change")
}

func TestServingsFactorDefaultsOriginal(t *testing.T) {
	assert.Equal(t, 3.0, ServingsFactor(0, 3))
	assert.Equal(t, 1.5, ServingsFactor(2, 3))
}

func TestByServingsOverflow(t *testing.T) {
	ings := []domain.Ingredient{{Quantity: 100}, {Quantity: 50}}

	tests := []struct {
		name   string
		factor float64
	}{
		{"product overflows", ServingsFactor(2, 1e308)},
		{"factor overflows", ServingsFactor(1e-10, 1e308)},
		{"nan factor", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ByServings(ings, tt.factor)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestByIngredient(t *testing.T) {
	inputs := Baseline([]domain.Ingredient{{Quantity: 100}, {Quantity: 50}})

	got, ok := ByIngredient(inputs, 1, "75")
	require.True(t, ok)
	assert.Equal(t, "150.00", got[0].Value)
	assert.Equal(t, "75", got[1].Value, "edited input keeps the typed text")

	// Anchors are read, never written.
	assert.Equal(t, 100.0, got[0].Anchor)
	assert.Equal(t, 50.0, got[1].Anchor)

	// The caller's slice is untouched.
	assert.Equal(t, "100", inputs[0].Value)
	assert.Equal(t, "50", inputs[1].Value)
}

func TestByIngredientUsesAnchorsNotDisplayedValues(t *testing.T) {
	inputs := Baseline([]domain.Ingredient{{Quantity: 100}, {Quantity: 50}, {Quantity: 10}})

	step1, ok := ByIngredient(inputs, 1, "100")
	require.True(t, ok)
	assert.Equal(t, "200.00", step1[0].Value)

	// Editing the first input now divides by its anchor (100), not by the
	// displayed 200.00.
	step2, ok := ByIngredient(step1, 0, "300")
	require.True(t, ok)
	assert.Equal(t, "150.00", step2[1].Value)
	assert.Equal(t, "30.00", step2[2].Value)
}

func TestByIngredientSmallAnchorOverflow(t *testing.T) {
	inputs := Baseline([]domain.Ingredient{{Quantity: 0.5}, {Quantity: 50}})

	got, ok := ByIngredient(inputs, 0, "1e308")
	assert.False(t, ok)
	assert.Equal(t, "1e308", got[0].Value)
	assert.Equal(t, inputs[1], got[1])
}

func TestByIngredientNoOps(t *testing.T) {
	inputs := Baseline([]domain.Ingredient{{Quantity: 0}, {Quantity: 50}})

	tests := []struct {
		name  string
		idx   int
		typed string
	}{
		{"non-numeric", 1, "lots"},
		{"empty", 1, ""},
		{"zero anchor", 0, "5"},
		{"out of range", 7, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ByIngredient(inputs, tt.idx, tt.typed)
			assert.False(t, ok)
			for i := range inputs {
				if i == tt.idx {
					assert.Equal(t, tt.typed, got[i].Value)
					continue
				}
				assert.Equal(t, inputs[i], got[i])
			}
		})
	}
}
