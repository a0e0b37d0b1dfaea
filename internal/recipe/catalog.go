// Package recipe loads the recipe catalog from the metadata document.
package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.CatalogSource = (*Loader)(nil)

// Loader reads the metadata document through a fetcher.
type Loader struct {
	fetch domain.DocumentFetcher
	path  string
	log   *logger.Logger
}

// NewLoader creates a catalog loader that fetches metadataPath.
func NewLoader(fetch domain.DocumentFetcher, metadataPath string, log *logger.Logger) *Loader {
	return &Loader{fetch: fetch, path: metadataPath, log: log}
}

// Load fetches and decodes the metadata document. Recipes keep source order.
func (l *Loader) Load(ctx context.Context) (*domain.Catalog, error) {
	raw, err := l.fetch.Fetch(ctx, l.path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	cat, err := DecodeCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", l.path, err)
	}

	if cat.Total != len(cat.Recipes) {
		l.log.Warn("catalog: totalRecipes=%d but %d recipes listed", cat.Total, len(cat.Recipes))
	}
	l.log.Debug("catalog loaded: %d recipes, %d tags", len(cat.Recipes), len(cat.AllTags))
	return cat, nil
}

// metadataDoc is the wire form of the metadata document.
type metadataDoc struct {
	TotalRecipes *int         `json:"totalRecipes"`
	AllTags      []string     `json:"allTags"`
	Recipes      []summaryDoc `json:"recipes"`
}

// summaryDoc accepts both "id" and the index generator's "filename" key.
type summaryDoc struct {
	ID          string          `json:"id"`
	Filename    string          `json:"filename"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
}

// DecodeCatalog parses a metadata document. A tag collection that is missing
// or not a list of strings leaves that summary's Tags nil rather than failing
// the whole document. Entries with no identifier are malformed.
func DecodeCatalog(raw []byte) (*domain.Catalog, error) {
	var doc metadataDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}

	cat := &domain.Catalog{
		Recipes: make([]domain.RecipeSummary, 0, len(doc.Recipes)),
	}
	seen := make(map[string]bool, len(doc.Recipes))
	for i, s := range doc.Recipes {
		id := s.ID
		if id == "" {
			id = s.Filename
		}
		if id == "" {
			return nil, fmt.Errorf("%w: recipe %d has no identifier", domain.ErrMalformed, i)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate recipe identifier %q", domain.ErrMalformed, id)
		}
		seen[id] = true

		cat.Recipes = append(cat.Recipes, domain.RecipeSummary{
			ID:          id,
			Name:        s.Name,
			Description: s.Description,
			Tags:        decodeTags(s.Tags),
		})
	}

	cat.Total = len(cat.Recipes)
	if doc.TotalRecipes != nil {
		cat.Total = *doc.TotalRecipes
	}

	cat.AllTags = doc.AllTags
	if len(cat.AllTags) == 0 {
		cat.AllTags = DistinctTags(cat.Recipes)
	}
	return cat, nil
}

func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	if tags == nil {
		return nil
	}
	return tags
}

// DistinctTags returns the sorted set of tags across summaries.
func DistinctTags(recipes []domain.RecipeSummary) []string {
	set := make(map[string]struct{})
	for _, r := range recipes {
		for _, t := range r.Tags {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
