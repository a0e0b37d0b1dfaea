// Package detail loads recipe detail documents on demand and caches them
// for the rest of the session.
package detail

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.DetailLoader = (*Presenter)(nil)

// PathFunc maps a recipe identifier to its detail document path.
type PathFunc func(id string) string

// Presenter fetches detail documents and owns the detail cache. It is the
// only writer of the store.
type Presenter struct {
	fetch  domain.DocumentFetcher
	store  domain.DetailStore
	pathOf PathFunc
	group  singleflight.Group
	log    *logger.Logger
}

// NewPresenter creates a presenter over the given fetcher and store.
func NewPresenter(fetch domain.DocumentFetcher, store domain.DetailStore, pathOf PathFunc, log *logger.Logger) *Presenter {
	return &Presenter{
		fetch:  fetch,
		store:  store,
		pathOf: pathOf,
		log:    log,
	}
}

// Cached returns the detail for id when it is already in the store.
func (p *Presenter) Cached(id string) (*domain.RecipeDetail, bool) {
	return p.store.Get(id)
}

// LoadDetail returns the cached detail for id, or fetches, decodes, computes
// ratios, caches and returns it. Concurrent misses for one id share a single
// fetch. On failure nothing is cached.
func (p *Presenter) LoadDetail(ctx context.Context, id string) (*domain.RecipeDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("load detail: empty identifier: %w", domain.ErrInvalidInput)
	}
	if d, ok := p.store.Get(id); ok {
		p.log.Debug("detail: cache hit %s", id)
		return d, nil
	}

	v, err, shared := p.group.Do(id, func() (any, error) {
		// A previous flight may have filled the cache while we waited.
		if d, ok := p.store.Get(id); ok {
			return d, nil
		}

		path := p.pathOf(id)
		raw, err := p.fetch.Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("load detail %s: %w", id, err)
		}

		d, err := DecodeDetail(id, raw)
		if err != nil {
			return nil, fmt.Errorf("load detail %s (%s): %w", id, path, err)
		}

		p.store.Set(id, d)
		p.log.Info("detail: loaded %s (%d ingredients, %d steps)", id, len(d.Ingredients), len(d.Steps))
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.log.Debug("detail: shared in-flight fetch for %s", id)
	}
	return v.(*domain.RecipeDetail), nil
}

// detailDoc is the wire form of a detail document.
type detailDoc struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Servings    *servingsDoc     `json:"servings"`
	Ingredients *[]ingredientDoc `json:"ingredients"`
	Steps       *[]string        `json:"steps"`
	Notes       []string         `json:"notes"`
	Tags        []string         `json:"tags"`
}

type servingsDoc struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type ingredientDoc struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
}

// DecodeDetail parses a detail document for id and computes ingredient
// ratios. Missing servings, or a non-positive servings quantity, default to
// one. A document without ingredients or steps, or an ingredient without a
// numeric quantity, is malformed. Empty lists are fine.
func DecodeDetail(id string, raw []byte) (*domain.RecipeDetail, error) {
	var doc detailDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	if doc.Ingredients == nil {
		return nil, fmt.Errorf("%w: no ingredients list", domain.ErrMalformed)
	}
	if doc.Steps == nil {
		return nil, fmt.Errorf("%w: no steps list", domain.ErrMalformed)
	}
	ings := *doc.Ingredients

	d := &domain.RecipeDetail{
		ID:          id,
		Name:        doc.Name,
		Description: doc.Description,
		Servings:    domain.DefaultServings,
		Ingredients: make([]domain.Ingredient, 0, len(ings)),
		Steps:       *doc.Steps,
		Notes:       doc.Notes,
		Tags:        doc.Tags,
	}
	if doc.Servings != nil {
		d.Servings.Unit = doc.Servings.Unit
		if doc.Servings.Quantity > 0 {
			d.Servings.Quantity = doc.Servings.Quantity
		}
	}

	for i, ing := range ings {
		if ing.Quantity == nil {
			return nil, fmt.Errorf("%w: ingredient %d (%s) has no quantity", domain.ErrMalformed, i, ing.Name)
		}
		d.Ingredients = append(d.Ingredients, domain.Ingredient{
			Name:     ing.Name,
			Quantity: *ing.Quantity,
			Unit:     ing.Unit,
		})
	}

	domain.ComputeRatios(d.Ingredients)
	return d, nil
}
