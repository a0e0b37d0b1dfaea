package viewer

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/filter"
)

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Total:   2,
		AllTags: []string{"spicy", "veg"},
		Recipes: []domain.RecipeSummary{
			{ID: "a", Name: "A", Tags: []string{"veg"}},
			{ID: "b", Name: "B", Tags: []string{"veg", "spicy"}},
		},
	}
}

func stew() *domain.RecipeDetail {
	ings := []domain.Ingredient{
		{Name: "beans", Quantity: 100, Unit: "g"},
		{Name: "stock", Quantity: 50, Unit: "ml"},
	}
	domain.ComputeRatios(ings)
	return &domain.RecipeDetail{
		ID:          "b",
		Name:        "B",
		Servings:    domain.Servings{Quantity: 2, Unit: "bowls"},
		Ingredients: ings,
		Steps:       []string{"Simmer"},
	}
}

func reduceAll(t *testing.T, s State, evs ...domain.Event) State {
	t.Helper()
	for _, ev := range evs {
		tr := Reduce(s, ev)
		require.NoError(t, tr.Err, "event %s", ev.Type)
		s = tr.State
	}
	return s
}

func visibleIDs(s State) []string {
	var out []string
	for _, r := range s.Visible() {
		out = append(out, r.ID)
	}
	return out
}

func TestReduceTagFlow(t *testing.T) {
	s := State{Catalog: testCatalog()}

	s = reduceAll(t, s, domain.Event{Type: domain.EventToggleTag, Payload: "veg"})
	assert.Equal(t, []string{"a", "b"}, visibleIDs(s))

	s = reduceAll(t, s, domain.Event{Type: domain.EventToggleTag, Payload: "Spicy"})
	assert.Equal(t, []string{"b"}, visibleIDs(s))

	s = reduceAll(t, s, domain.Event{Type: domain.EventClearTags})
	assert.Equal(t, []string{"a", "b"}, visibleIDs(s))
}

func TestReduceUnknownTag(t *testing.T) {
	s := State{Catalog: testCatalog()}
	tr := Reduce(s, domain.Event{Type: domain.EventToggleTag, Payload: "dessert"})
	assert.ErrorIs(t, tr.Err, domain.ErrNotFound)
	assert.True(t, tr.State.Selection.Empty())
}

func TestReduceOpenRecipe(t *testing.T) {
	base := State{Catalog: testCatalog(), Selection: filter.NewSelection("spicy")}

	tests := []struct {
		name     string
		ref      string
		wantLoad string
		wantErr  error
	}{
		{"by id", "a", "a", nil},
		{"by visible number", "1", "b", nil},
		{"number past visible list", "2", "", domain.ErrNotFound},
		{"unknown id", "zzz", "", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Reduce(base, domain.Event{Type: domain.EventOpenRecipe, Payload: tt.ref})
			if tt.wantErr != nil {
				assert.ErrorIs(t, tr.Err, tt.wantErr)
				assert.Equal(t, base, tr.State)
				return
			}
			require.NoError(t, tr.Err)
			assert.Equal(t, tt.wantLoad, tr.Load)
			assert.Equal(t, tt.wantLoad, tr.State.Pending)
			assert.Equal(t, PhaseHidden, tr.State.Phase, "view waits for the detail")
		})
	}
}

func TestReduceDetailLoaded(t *testing.T) {
	s := State{Catalog: testCatalog(), Pending: "b"}

	t.Run("matching", func(t *testing.T) {
		tr := Reduce(s, domain.Event{Type: domain.EventDetailLoaded, Payload: "b", Detail: stew()})
		require.NoError(t, tr.Err)
		assert.Equal(t, PhaseBaseline, tr.State.Phase)
		assert.Equal(t, "2", tr.State.Servings)
		assert.Equal(t, "100", tr.State.Inputs[0].Value)
		assert.Empty(t, tr.State.Pending)
	})

	t.Run("stale", func(t *testing.T) {
		tr := Reduce(s, domain.Event{Type: domain.EventDetailLoaded, Payload: "a", Detail: stew()})
		assert.True(t, tr.Stale)
		assert.Equal(t, s, tr.State)
	})

	t.Run("failed", func(t *testing.T) {
		boom := errors.Join(domain.ErrFetch, errors.New("503"))
		tr := Reduce(s, domain.Event{Type: domain.EventDetailLoaded, Payload: "b", Err: boom})
		assert.ErrorIs(t, tr.Err, domain.ErrFetch)
		assert.Equal(t, PhaseHidden, tr.State.Phase)
		assert.Nil(t, tr.State.Detail)
		assert.Empty(t, tr.State.Pending)
	})
}

func opened(t *testing.T) State {
	t.Helper()
	s := State{Catalog: testCatalog(), Pending: "b"}
	return reduceAll(t, s, domain.Event{Type: domain.EventDetailLoaded, Payload: "b", Detail: stew()})
}

func TestReduceServings(t *testing.T) {
	s := reduceAll(t, opened(t), domain.Event{Type: domain.EventEditServings, Payload: "3"})
	assert.Equal(t, "150.00", s.Inputs[0].Value)
	assert.Equal(t, "75.00", s.Inputs[1].Value)
	assert.Equal(t, "3", s.Servings)
	assert.Equal(t, PhaseBaseline, s.Phase)

	// Baseline is untouched.
	assert.Equal(t, 100.0, s.Detail.Ingredients[0].Quantity)

	for _, bad := range []string{"", "many", "-1", "1e308"} {
		next := reduceAll(t, s, domain.Event{Type: domain.EventEditServings, Payload: bad})
		assert.Equal(t, s.Inputs, next.Inputs, "servings %q", bad)
	}
}

func TestReduceIngredientEdit(t *testing.T) {
	s := reduceAll(t, opened(t), domain.Event{Type: domain.EventEditIngredient, Index: 1, Payload: "75"})
	assert.Equal(t, PhaseLocalScale, s.Phase)
	assert.Equal(t, "150.00", s.Inputs[0].Value)
	assert.Equal(t, "75", s.Inputs[1].Value)
	assert.Equal(t, "2", s.Servings, "servings field is not touched")

	// A servings edit resets to a full render from the baseline.
	s = reduceAll(t, s, domain.Event{Type: domain.EventEditServings, Payload: "2"})
	assert.Equal(t, PhaseBaseline, s.Phase)
	assert.Equal(t, "100.00", s.Inputs[0].Value)
	assert.Equal(t, "50.00", s.Inputs[1].Value)
}

func TestReduceIngredientEditNonNumeric(t *testing.T) {
	before := opened(t)
	s := reduceAll(t, before, domain.Event{Type: domain.EventEditIngredient, Index: 1, Payload: "a pinch"})
	assert.Equal(t, before.Inputs[0], s.Inputs[0])
	assert.Equal(t, "a pinch", s.Inputs[1].Value)
}

func TestReduceIngredientEditOverflow(t *testing.T) {
	before := opened(t)
	tr := Reduce(before, domain.Event{Type: domain.EventEditIngredient, Index: 1, Payload: "1e308"})
	require.NoError(t, tr.Err)
	assert.Equal(t, before.Inputs[0], tr.State.Inputs[0])
	assert.Equal(t, "1e308", tr.State.Inputs[1].Value)
}

func TestReduceServingsRoundTrip(t *testing.T) {
	d := &domain.RecipeDetail{
		ID:       "b",
		Servings: domain.Servings{Quantity: 4},
		Ingredients: []domain.Ingredient{
			{Quantity: 100}, {Quantity: 33.3}, {Quantity: 0.75}, {Quantity: 7}, {Quantity: 1.005},
		},
	}
	start := reduceAll(t, State{Catalog: testCatalog(), Pending: "b"},
		domain.Event{Type: domain.EventDetailLoaded, Payload: "b", Detail: d})

	for _, k := range []string{"1", "3", "7", "0.5", "12.5"} {
		s := reduceAll(t, start,
			domain.Event{Type: domain.EventEditServings, Payload: k},
			domain.Event{Type: domain.EventEditServings, Payload: "4"},
		)
		require.Len(t, s.Inputs, len(d.Ingredients))
		for i, in := range s.Inputs {
			v, err := strconv.ParseFloat(in.Value, 64)
			require.NoError(t, err)
			assert.InDelta(t, d.Ingredients[i].Quantity, v, 0.01, "k=%s ingredient %d", k, i)
			assert.InDelta(t, d.Ingredients[i].Quantity, in.Anchor, 0.01, "k=%s anchor %d", k, i)
		}
	}
}

func TestReduceEditsWithoutRecipe(t *testing.T) {
	s := State{Catalog: testCatalog()}
	for _, ev := range []domain.Event{
		{Type: domain.EventEditServings, Payload: "3"},
		{Type: domain.EventEditIngredient, Index: 0, Payload: "3"},
	} {
		tr := Reduce(s, ev)
		assert.ErrorIs(t, tr.Err, domain.ErrNoRecipe)
	}

	tr := Reduce(opened(t), domain.Event{Type: domain.EventEditIngredient, Index: 9, Payload: "3"})
	assert.ErrorIs(t, tr.Err, domain.ErrNotFound)
}

func TestReduceBack(t *testing.T) {
	s := reduceAll(t, opened(t), domain.Event{Type: domain.EventBack})
	assert.Equal(t, PhaseHidden, s.Phase)
	assert.Nil(t, s.Detail)
	assert.Nil(t, s.Inputs)
}

func TestRender(t *testing.T) {
	s := State{Catalog: testCatalog()}
	v := Render(s)
	assert.Equal(t, ScreenList, v.Screen)
	assert.Equal(t, NoSelectionText, v.Selection)
	assert.Len(t, v.Recipes, 2)
	assert.Empty(t, v.Empty)

	s.Selection = filter.NewSelection("spicy", "veg")
	v = Render(s)
	assert.Equal(t, "spicy, veg", v.Selection)
	assert.Equal(t, []filter.Tag{{Name: "spicy", Active: true}, {Name: "veg", Active: true}}, v.Tags)

	s.Catalog = &domain.Catalog{AllTags: []string{"spicy", "veg"}}
	v = Render(s)
	assert.Equal(t, NoResultsText, v.Empty)

	v = Render(opened(t))
	require.NotNil(t, v.Detail)
	assert.Equal(t, ScreenDetail, v.Screen)
	assert.Equal(t, "bowls", v.Detail.ServingsUnit)
	assert.Equal(t, IngredientView{Number: 2, Name: "stock", Value: "50", Unit: "ml"}, v.Detail.Ingredients[1])
}
