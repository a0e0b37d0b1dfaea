// Package domain defines the core types and interfaces for the recipe viewer.
// All other packages depend on domain; domain depends on nothing.
package domain

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string
	Name        string
	Description string
	Tags        []string // nil when the metadata entry carries no usable tag list
}

// HasTag reports whether the summary carries the given tag.
func (r RecipeSummary) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Catalog is the decoded metadata document: every recipe summary plus the
// distinct tag set, in source order.
type Catalog struct {
	Total   int
	AllTags []string
	Recipes []RecipeSummary
}

// Find returns the summary with the given ID.
func (c *Catalog) Find(id string) (RecipeSummary, bool) {
	if c == nil {
		return RecipeSummary{}, false
	}
	for _, r := range c.Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return RecipeSummary{}, false
}

// Servings is the yield a recipe's quantities are written for.
type Servings struct {
	Quantity float64
	Unit     string
}

// DefaultServings is used when a detail document omits servings or gives a
// non-positive quantity.
var DefaultServings = Servings{Quantity: 1}

// RecipeDetail is the full recipe document as fetched on demand.
type RecipeDetail struct {
	ID          string
	Name        string
	Description string
	Servings    Servings
	Ingredients []Ingredient
	Steps       []string
	Notes       []string
	Tags        []string
}

// Ingredient is a single ingredient line. Quantity is the baseline and is
// never mutated after load.
type Ingredient struct {
	Name     string
	Quantity float64
	Unit     string
	Ratio    *float64 // quantity relative to the first ingredient; nil when undefined
}

// ComputeRatios sets every ingredient's Ratio to quantity / first quantity.
// When the list is empty or the first quantity is not positive, ratios are
// left nil.
func ComputeRatios(ings []Ingredient) {
	if len(ings) == 0 || ings[0].Quantity <= 0 {
		return
	}
	base := ings[0].Quantity
	for i := range ings {
		r := ings[i].Quantity / base
		ings[i].Ratio = &r
	}
}
