package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// DetailSource loads details and reports cache hits without I/O.
type DetailSource interface {
	domain.DetailLoader
	Cached(id string) (*domain.RecipeDetail, bool)
}

// resultBuffer is the capacity of the fetch result channel.
const resultBuffer = 16

// Engine owns the viewer state. Dispatch must be called from a single
// goroutine; fetches run elsewhere and come back through Results as
// EventDetailLoaded events to be dispatched in turn.
type Engine struct {
	catalog domain.CatalogSource
	details DetailSource
	log     *logger.Logger

	state   State
	results chan domain.Event
	wg      sync.WaitGroup
}

// New creates a viewer engine with the given dependencies.
func New(catalog domain.CatalogSource, details DetailSource, log *logger.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		details: details,
		log:     log,
		results: make(chan domain.Event, resultBuffer),
	}
}

// Start loads the catalog. On failure the error is logged and returned and
// the engine keeps an empty catalog, so the session stays usable.
func (e *Engine) Start(ctx context.Context) error {
	cat, err := e.catalog.Load(ctx)
	if err != nil {
		e.log.Error("catalog: %v", err)
		e.state.Catalog = &domain.Catalog{}
		return err
	}
	e.state.Catalog = cat
	e.log.Info("catalog ready: %d recipes", len(cat.Recipes))
	return nil
}

// Results delivers completed detail fetches.
func (e *Engine) Results() <-chan domain.Event { return e.results }

// State returns the current state.
func (e *Engine) State() State { return e.state }

// View renders the current state.
func (e *Engine) View() View { return Render(e.state) }

// Dispatch applies ev and returns the resulting view. Recovered failures are
// logged and also returned so the caller can tell the user.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) (View, error) {
	t := Reduce(e.state, ev)
	if t.Stale {
		e.log.Debug("dropping stale detail for %s (pending=%q)", ev.Payload, e.state.Pending)
	}
	if t.Err != nil {
		e.logRecovered(ev, t.Err)
	}
	prev := e.state.Phase
	e.state = t.State
	if prev != e.state.Phase {
		e.log.Debug("phase %s -> %s", prev, e.state.Phase)
	}

	if t.Load != "" {
		if d, ok := e.details.Cached(t.Load); ok {
			// Cache hit: no I/O, render immediately.
			return e.Dispatch(ctx, domain.Event{Type: domain.EventDetailLoaded, Payload: t.Load, Detail: d})
		}
		e.fetch(ctx, t.Load)
	}
	return Render(e.state), t.Err
}

func (e *Engine) logRecovered(ev domain.Event, err error) {
	switch {
	case errors.Is(err, domain.ErrFetch), errors.Is(err, domain.ErrMalformed):
		e.log.Error("%s: %v", ev.Type, err)
	default:
		e.log.Warn("%s: %v", ev.Type, err)
	}
}

// fetch loads id in the background and posts the outcome to Results.
func (e *Engine) fetch(ctx context.Context, id string) {
	e.log.Debug("fetching detail %s", id)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		d, err := e.details.LoadDetail(ctx, id)
		if err != nil {
			err = fmt.Errorf("opening %s: %w", id, err)
		}
		select {
		case e.results <- domain.Event{Type: domain.EventDetailLoaded, Payload: id, Detail: d, Err: err}:
		case <-ctx.Done():
			e.log.Debug("detail %s finished after shutdown", id)
		}
	}()
}

// Wait blocks until every background fetch has delivered or given up.
func (e *Engine) Wait() { e.wg.Wait() }
