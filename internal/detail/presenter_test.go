package detail

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingFetcher struct {
	docs  map[string]string
	calls atomic.Int32
	gate  chan struct{} // when non-nil, Fetch blocks until closed
}

func (f *countingFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	body, ok := f.docs[path]
	if !ok {
		return nil, errors.Join(domain.ErrFetch, domain.ErrNotFound)
	}
	return []byte(body), nil
}

func pathOf(id string) string { return "recipes/" + id + ".json" }

const pancakes = `{
    "name": "Pancakes",
    "description": "Fluffy",
    "servings": {"quantity": 2, "unit": "people"},
    "ingredients": [
        {"name": "flour", "quantity": 200, "unit": "g"},
        {"name": "milk", "quantity": 300, "unit": "ml"},
        {"name": "egg", "quantity": 1, "unit": ""}
    ],
    "steps": ["Mix", "Fry"],
    "notes": ["Rest the batter"]
}`

func setupPresenter(t *testing.T, f *countingFetcher) (*Presenter, *storage.MemoryStore) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	return NewPresenter(f, store, pathOf, log), store
}

func TestLoadDetailCachesOnce(t *testing.T) {
	f := &countingFetcher{docs: map[string]string{"recipes/pancakes.json": pancakes}}
	p, store := setupPresenter(t, f)
	ctx := context.Background()

	first, err := p.LoadDetail(ctx, "pancakes")
	require.NoError(t, err)
	second, err := p.LoadDetail(ctx, "pancakes")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, f.calls.Load())
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, "pancakes", first.ID)
	assert.Equal(t, domain.Servings{Quantity: 2, Unit: "people"}, first.Servings)
	assert.Equal(t, []string{"Mix", "Fry"}, first.Steps)
	assert.Equal(t, []string{"Rest the batter"}, first.Notes)

	cached, ok := p.Cached("pancakes")
	require.True(t, ok)
	assert.Same(t, first, cached)
}

func TestLoadDetailConcurrentMissesShareFetch(t *testing.T) {
	f := &countingFetcher{
		docs: map[string]string{"recipes/pancakes.json": pancakes},
		gate: make(chan struct{}),
	}
	p, _ := setupPresenter(t, f)
	ctx := context.Background()

	const callers = 8
	results := make([]*domain.RecipeDetail, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := p.LoadDetail(ctx, "pancakes")
			assert.NoError(t, err)
			results[i] = d
		}(i)
	}
	close(f.gate)
	wg.Wait()

	assert.EqualValues(t, 1, f.calls.Load())
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestLoadDetailFailuresAreNotCached(t *testing.T) {
	f := &countingFetcher{docs: map[string]string{
		"recipes/broken.json":  `{"name": "Broken", "ingredients": [`,
		"recipes/noqty.json":   `{"name": "NoQty", "ingredients": [{"name": "salt"}], "steps": []}`,
		"recipes/bare.json":    `{"name": "Bare"}`,
		"recipes/nulls.json":   `{"name": "Nulls", "ingredients": null, "steps": null}`,
		"recipes/nosteps.json": `{"name": "NoSteps", "ingredients": []}`,
	}}
	p, store := setupPresenter(t, f)
	ctx := context.Background()

	tests := []struct {
		id      string
		wantErr error
	}{
		{"missing", domain.ErrNotFound},
		{"broken", domain.ErrMalformed},
		{"noqty", domain.ErrMalformed},
		{"bare", domain.ErrMalformed},
		{"nulls", domain.ErrMalformed},
		{"nosteps", domain.ErrMalformed},
		{"", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, err := p.LoadDetail(ctx, tt.id)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, store.Len())

	// A retry is a fresh fetch.
	before := f.calls.Load()
	_, _ = p.LoadDetail(ctx, "missing")
	assert.Equal(t, before+1, f.calls.Load())
}

func TestDecodeDetailRatios(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantRatios []float64 // nil means every ratio is undefined
	}{
		{
			name:       "positive first quantity",
			doc:        `{"ingredients":[{"name":"a","quantity":100},{"name":"b","quantity":50},{"name":"c","quantity":0}],"steps":[]}`,
			wantRatios: []float64{1, 0.5, 0},
		},
		{
			name: "zero first quantity",
			doc:  `{"ingredients":[{"name":"salt","quantity":0},{"name":"b","quantity":50}],"steps":[]}`,
		},
		{
			name: "empty list",
			doc:  `{"ingredients":[],"steps":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecodeDetail("x", []byte(tt.doc))
			require.NoError(t, err)

			for i, ing := range d.Ingredients {
				if tt.wantRatios == nil {
					assert.Nil(t, ing.Ratio, "ingredient %d", i)
					continue
				}
				require.NotNil(t, ing.Ratio, "ingredient %d", i)
				assert.InDelta(t, tt.wantRatios[i], *ing.Ratio, 1e-12)
				assert.InDelta(t, ing.Quantity/d.Ingredients[0].Quantity, *ing.Ratio, 1e-12)
			}
		})
	}
}

func TestDecodeDetailServingsDefault(t *testing.T) {
	tests := []struct {
		doc  string
		want domain.Servings
	}{
		{`{"ingredients":[],"steps":[]}`, domain.Servings{Quantity: 1}},
		{`{"servings":{"quantity":0,"unit":"bowls"},"ingredients":[],"steps":[]}`, domain.Servings{Quantity: 1, Unit: "bowls"}},
		{`{"servings":{"quantity":4,"unit":"bowls"},"ingredients":[],"steps":[]}`, domain.Servings{Quantity: 4, Unit: "bowls"}},
	}

	for _, tt := range tests {
		d, err := DecodeDetail("x", []byte(tt.doc))
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.Servings, tt.doc)
	}
}
