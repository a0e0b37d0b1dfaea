// Package filter derives the visible recipe list from the active tag
// selection. Matching is conjunctive: a recipe is visible only when it
// carries every selected tag.
package filter

import (
	"sort"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Selection is an immutable set of active tags. The zero value is empty.
type Selection struct {
	tags map[string]struct{}
}

// NewSelection returns a selection holding tags.
func NewSelection(tags ...string) Selection {
	s := Selection{}
	for _, t := range tags {
		s = s.with(t)
	}
	return s
}

// Has reports whether tag is selected.
func (s Selection) Has(tag string) bool {
	_, ok := s.tags[tag]
	return ok
}

// Len returns the number of selected tags.
func (s Selection) Len() int { return len(s.tags) }

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return len(s.tags) == 0 }

// Tags returns the selected tags sorted.
func (s Selection) Tags() []string {
	out := make([]string, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Toggle returns a selection with tag added if absent, removed if present.
func (s Selection) Toggle(tag string) Selection {
	if s.Has(tag) {
		return s.without(tag)
	}
	return s.with(tag)
}

// Clear returns the empty selection.
func (s Selection) Clear() Selection { return Selection{} }

func (s Selection) with(tag string) Selection {
	next := make(map[string]struct{}, len(s.tags)+1)
	for t := range s.tags {
		next[t] = struct{}{}
	}
	next[tag] = struct{}{}
	return Selection{tags: next}
}

func (s Selection) without(tag string) Selection {
	next := make(map[string]struct{}, len(s.tags))
	for t := range s.tags {
		if t != tag {
			next[t] = struct{}{}
		}
	}
	return Selection{tags: next}
}

// Apply returns the recipes carrying every selected tag, in source order.
// An empty selection returns all unchanged. Recipes with no tag list never
// match a non-empty selection.
func Apply(all []domain.RecipeSummary, sel Selection) []domain.RecipeSummary {
	if sel.Empty() {
		return all
	}
	out := make([]domain.RecipeSummary, 0, len(all))
	for _, r := range all {
		if Matches(r, sel) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r carries every tag in sel.
func Matches(r domain.RecipeSummary, sel Selection) bool {
	if sel.Empty() {
		return true
	}
	if r.Tags == nil {
		return false
	}
	for t := range sel.tags {
		if !r.HasTag(t) {
			return false
		}
	}
	return true
}

// Tag is one button in the tag palette.
type Tag struct {
	Name   string
	Active bool
}

// Palette returns the tag buttons for allTags in order, flagging the
// selected ones.
func Palette(allTags []string, sel Selection) []Tag {
	out := make([]Tag, len(allTags))
	for i, t := range allTags {
		out[i] = Tag{Name: t, Active: sel.Has(t)}
	}
	return out
}
