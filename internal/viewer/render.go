package viewer

import (
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/filter"
)

// Literal strings shown for an empty selection and an empty result.
const (
	NoSelectionText = "No tags selected"
	NoResultsText   = "No recipes match the selected tags"
)

// Screen is the top-level view being shown.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
)

// View is a display-ready snapshot of State.
type View struct {
	Screen Screen

	Tags      []filter.Tag
	Selection string // comma-separated active tags or NoSelectionText
	Recipes   []domain.RecipeSummary
	Empty     string // NoResultsText when Recipes is empty
	Loading   string // identifier of a pending fetch

	Detail *DetailView
}

// DetailView is the rendered recipe detail.
type DetailView struct {
	Name         string
	Description  string
	Servings     string
	ServingsUnit string
	Phase        Phase
	Ingredients  []IngredientView
	Steps        []string
	Notes        []string
}

// IngredientView is one ingredient row with its displayed quantity.
type IngredientView struct {
	Number int // 1-based
	Name   string
	Value  string
	Unit   string
}

// Render derives the view from s. It has no side effects.
func Render(s State) View {
	v := View{
		Screen:  ScreenList,
		Loading: s.Pending,
	}

	var allTags []string
	if s.Catalog != nil {
		allTags = s.Catalog.AllTags
	}
	v.Tags = filter.Palette(allTags, s.Selection)

	if s.Selection.Empty() {
		v.Selection = NoSelectionText
	} else {
		v.Selection = strings.Join(s.Selection.Tags(), ", ")
	}

	v.Recipes = s.Visible()
	if len(v.Recipes) == 0 {
		v.Empty = NoResultsText
	}

	if s.Phase == PhaseHidden || s.Detail == nil {
		return v
	}

	d := s.Detail
	dv := &DetailView{
		Name:         d.Name,
		Description:  d.Description,
		Servings:     s.Servings,
		ServingsUnit: d.Servings.Unit,
		Phase:        s.Phase,
		Ingredients:  make([]IngredientView, len(d.Ingredients)),
		Steps:        d.Steps,
		Notes:        d.Notes,
	}
	for i, ing := range d.Ingredients {
		row := IngredientView{Number: i + 1, Name: ing.Name, Unit: ing.Unit}
		if i < len(s.Inputs) {
			row.Value = s.Inputs[i].Value
		}
		dv.Ingredients[i] = row
	}

	v.Screen = ScreenDetail
	v.Detail = dv
	return v
}
