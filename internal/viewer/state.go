// Package viewer implements the recipe viewer state machine: a pure
// reducer from (state, event) to the next state, a pure renderer from state
// to view, and an Engine that owns the live state and runs detail fetches.
package viewer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/filter"
	"github.com/hammamikhairi/recipebook/internal/scale"
)

// Phase is the detail view's state.
type Phase int

const (
	// PhaseHidden shows the recipe list.
	PhaseHidden Phase = iota
	// PhaseBaseline shows a detail rendered from the baseline or a servings edit.
	PhaseBaseline
	// PhaseLocalScale shows a detail after a single-ingredient edit.
	PhaseLocalScale
)

// String returns a human-readable phase.
func (p Phase) String() string {
	switch p {
	case PhaseHidden:
		return "hidden"
	case PhaseBaseline:
		return "baseline"
	case PhaseLocalScale:
		return "local_scale"
	default:
		return "unknown"
	}
}

// State is everything the viewer displays. Values are treated as immutable:
// Reduce always returns a new State.
type State struct {
	Catalog   *domain.Catalog
	Selection filter.Selection
	Phase     Phase

	// Pending is the recipe whose detail was requested and has not arrived.
	Pending string

	Detail   *domain.RecipeDetail
	Servings string        // servings field text
	Inputs   []scale.Input // one per ingredient, parallel to Detail.Ingredients
}

// Visible returns the catalog filtered by the current selection.
func (s State) Visible() []domain.RecipeSummary {
	if s.Catalog == nil {
		return nil
	}
	return filter.Apply(s.Catalog.Recipes, s.Selection)
}

// Transition is the outcome of one Reduce step.
type Transition struct {
	State State
	// Load names a recipe whose detail must be fetched; empty when none.
	Load string
	// Err is a recovered failure to log. State is unchanged when set.
	Err error
	// Stale is set when a detail arrived for a recipe no longer requested.
	Stale bool
}

// Reduce applies ev to prev. It performs no I/O.
func Reduce(prev State, ev domain.Event) Transition {
	switch ev.Type {
	case domain.EventToggleTag:
		return toggleTag(prev, ev.Payload)
	case domain.EventClearTags:
		next := prev
		next.Selection = prev.Selection.Clear()
		return Transition{State: next}
	case domain.EventOpenRecipe:
		return openRecipe(prev, ev.Payload)
	case domain.EventDetailLoaded:
		return detailLoaded(prev, ev)
	case domain.EventEditServings:
		return editServings(prev, ev.Payload)
	case domain.EventEditIngredient:
		return editIngredient(prev, ev.Index, ev.Payload)
	case domain.EventBack:
		next := prev
		next.Phase = PhaseHidden
		next.Pending = ""
		next.Detail = nil
		next.Servings = ""
		next.Inputs = nil
		return Transition{State: next}
	default:
		return Transition{State: prev}
	}
}

func toggleTag(prev State, name string) Transition {
	tag, ok := resolveTag(prev.Catalog, name)
	if !ok {
		return Transition{State: prev, Err: fmt.Errorf("tag %q: %w", name, domain.ErrNotFound)}
	}
	next := prev
	next.Selection = prev.Selection.Toggle(tag)
	return Transition{State: next}
}

// resolveTag finds the catalog's spelling of name, ignoring case.
func resolveTag(cat *domain.Catalog, name string) (string, bool) {
	if cat == nil {
		return "", false
	}
	name = strings.TrimSpace(name)
	for _, t := range cat.AllTags {
		if t == name {
			return t, true
		}
	}
	for _, t := range cat.AllTags {
		if strings.EqualFold(t, name) {
			return t, true
		}
	}
	return "", false
}

// openRecipe resolves ref as a 1-based position in the visible list, or as
// an identifier. The view does not change until the detail arrives.
func openRecipe(prev State, ref string) Transition {
	ref = strings.TrimSpace(ref)
	id, ok := resolveRecipe(prev, ref)
	if !ok {
		return Transition{State: prev, Err: fmt.Errorf("recipe %q: %w", ref, domain.ErrNotFound)}
	}
	next := prev
	next.Pending = id
	return Transition{State: next, Load: id}
}

func resolveRecipe(s State, ref string) (string, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		visible := s.Visible()
		if n >= 1 && n <= len(visible) {
			return visible[n-1].ID, true
		}
		return "", false
	}
	r, ok := s.Catalog.Find(ref)
	return r.ID, ok
}

func detailLoaded(prev State, ev domain.Event) Transition {
	if ev.Payload == "" || ev.Payload != prev.Pending {
		return Transition{State: prev, Stale: true}
	}
	if ev.Err != nil || ev.Detail == nil {
		next := prev
		next.Pending = ""
		err := ev.Err
		if err == nil {
			err = fmt.Errorf("recipe %q: %w", ev.Payload, domain.ErrNotFound)
		}
		return Transition{State: next, Err: err}
	}
	return Transition{State: renderBaseline(prev, ev.Detail)}
}

// renderBaseline is a full render from the unscaled detail.
func renderBaseline(prev State, d *domain.RecipeDetail) State {
	next := prev
	next.Pending = ""
	next.Detail = d
	next.Phase = PhaseBaseline
	next.Servings = scale.FormatBaseline(d.Servings.Quantity)
	next.Inputs = scale.Baseline(d.Ingredients)
	return next
}

// editServings recomputes every input from the baseline. Unparsable,
// negative or overflowing input leaves the inputs as they were.
func editServings(prev State, typed string) Transition {
	if prev.Detail == nil {
		return Transition{State: prev, Err: domain.ErrNoRecipe}
	}
	next := prev
	next.Servings = typed

	target, ok := scale.ParseQuantity(typed)
	if !ok || target < 0 {
		return Transition{State: next}
	}

	factor := scale.ServingsFactor(prev.Detail.Servings.Quantity, target)
	inputs, ok := scale.ByServings(prev.Detail.Ingredients, factor)
	if !ok {
		return Transition{State: next}
	}
	next.Inputs = inputs
	next.Phase = PhaseBaseline
	return Transition{State: next}
}

func editIngredient(prev State, idx int, typed string) Transition {
	if prev.Detail == nil {
		return Transition{State: prev, Err: domain.ErrNoRecipe}
	}
	if idx < 0 || idx >= len(prev.Inputs) {
		return Transition{State: prev, Err: fmt.Errorf("ingredient %d: %w", idx+1, domain.ErrNotFound)}
	}
	next := prev
	next.Inputs, _ = scale.ByIngredient(prev.Inputs, idx, typed)
	next.Phase = PhaseLocalScale
	return Transition{State: next}
}
