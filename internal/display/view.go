package display

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/filter"
	"github.com/hammamikhairi/recipebook/internal/viewer"
)

// ShowView prints the screen described by v.
func (u *UI) ShowView(v viewer.View) {
	if v.Screen == viewer.ScreenDetail && v.Detail != nil {
		u.showDetail(v.Detail)
	} else {
		u.showList(v)
	}
	u.SetStatus(StatusSegments(v)...)
}

func (u *UI) showList(v viewer.View) {
	u.PrintHeading("Tags:")
	u.Println("  " + TagPalette(v.Tags))
	u.PrintHint("Selected: " + v.Selection)
	u.Println("")

	if v.Empty != "" {
		u.PrintChat(v.Empty)
		return
	}

	u.PrintHeading("Recipes:")
	u.Println("")
	for i, r := range v.Recipes {
		u.PrintInstruction(fmt.Sprintf("[%d] %s", i+1, r.Name))
		if r.Description != "" {
			u.PrintHint(r.Description)
		}
		if len(r.Tags) > 0 {
			u.PrintHint("Tags: " + strings.Join(r.Tags, ", "))
		}
		u.Println("")
	}
	if v.Loading != "" {
		u.PrintHint("Loading " + v.Loading + "...")
	}
}

func (u *UI) showDetail(d *viewer.DetailView) {
	u.PrintHeading(d.Name)
	if d.Description != "" {
		u.PrintHint(d.Description)
	}
	u.Println("")

	u.PrintInstruction("Servings: " + quantityStyle.Render(ServingsLine(d)))
	if d.Phase == viewer.PhaseLocalScale {
		u.PrintHint("Scaled from an ingredient edit. Set servings to start over.")
	}
	u.Println("")

	u.PrintHeading("Ingredients:")
	for _, ing := range d.Ingredients {
		u.Println(IngredientLine(ing))
	}

	if len(d.Steps) > 0 {
		u.Println("")
		u.PrintHeading("Steps:")
		for i, s := range d.Steps {
			u.PrintInstruction(fmt.Sprintf("%d. %s", i+1, s))
		}
	}

	if len(d.Notes) > 0 {
		u.Println("")
		u.PrintHeading("Notes:")
		for _, n := range d.Notes {
			u.PrintHint("- " + n)
		}
	}
}

// TagPalette renders every tag as a chip, highlighting the active ones.
func TagPalette(tags []filter.Tag) string {
	if len(tags) == 0 {
		return secondaryStyle.Render("(no tags)")
	}
	chips := make([]string, len(tags))
	for i, t := range tags {
		if t.Active {
			chips[i] = activeTagStyle.Render(t.Name)
		} else {
			chips[i] = inactiveTagStyle.Render(t.Name)
		}
	}
	return strings.Join(chips, " ")
}

// ServingsLine formats the servings field with its unit.
func ServingsLine(d *viewer.DetailView) string {
	if d.ServingsUnit == "" {
		return d.Servings
	}
	return d.Servings + " " + d.ServingsUnit
}

// IngredientLine formats one numbered ingredient row.
func IngredientLine(ing viewer.IngredientView) string {
	qty := ing.Value
	if ing.Unit != "" {
		qty += " " + ing.Unit
	}
	return fmt.Sprintf("  %s %s  %s",
		secondaryStyle.Render(fmt.Sprintf("%2d.", ing.Number)),
		quantityStyle.Render(qty),
		primaryStyle.Render(ing.Name))
}

// StatusSegments summarises v for the status bar.
func StatusSegments(v viewer.View) []string {
	segs := []string{"Tags: " + v.Selection}
	switch {
	case v.Screen == viewer.ScreenDetail && v.Detail != nil:
		segs = append(segs, "Open: "+v.Detail.Name, "Servings: "+ServingsLine(v.Detail))
	case v.Loading != "":
		segs = append(segs, "Loading: "+v.Loading)
	default:
		segs = append(segs, fmt.Sprintf("%d recipes", len(v.Recipes)))
	}
	return segs
}
