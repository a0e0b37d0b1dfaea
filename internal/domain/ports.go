package domain

import "context"

// DocumentFetcher retrieves a raw document addressed by a relative path.
// Implementations can be HTTP-backed or read from a local directory.
type DocumentFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// CatalogSource provides the recipe catalog.
type CatalogSource interface {
	Load(ctx context.Context) (*Catalog, error)
}

// DetailLoader fetches or reuses a recipe detail by identifier.
type DetailLoader interface {
	LoadDetail(ctx context.Context, id string) (*RecipeDetail, error)
}

// DetailStore caches loaded details for the lifetime of a session. There is
// no per-entry delete; Reset drops everything and exists for long-lived hosts.
type DetailStore interface {
	Get(id string) (*RecipeDetail, bool)
	Has(id string) bool
	Set(id string, detail *RecipeDetail)
	Len() int
	Reset()
}

// EventParser converts raw user input into viewer events.
type EventParser interface {
	Parse(ctx context.Context, input string) (*Event, error)
}
