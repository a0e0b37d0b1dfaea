// Package server hosts the asset tree and a small JSON API over the same
// catalog, presenter and cache the terminal viewer uses.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/filter"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/scale"
)

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithStatic serves fsys under / for any path the API does not claim.
func WithStatic(fsys fs.FS) Option {
	return func(s *Server) { s.static = fsys }
}

// Server wires the HTTP routes to the recipe services.
type Server struct {
	catalog domain.CatalogSource
	details domain.DetailLoader
	store   domain.DetailStore
	static  fs.FS
	log     *logger.Logger

	mu  sync.RWMutex
	cat *domain.Catalog
}

// New creates a server. store is only used for cache resets.
func New(catalog domain.CatalogSource, details domain.DetailLoader, store domain.DetailStore, log *logger.Logger, opts ...Option) *Server {
	s := &Server{catalog: catalog, details: details, store: store, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			s.log.Warn("write error: %v", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/recipes", s.listRecipes)
		r.Get("/recipes/{id}", s.getRecipe)
		r.Get("/recipes/{id}/scaled", s.scaledRecipe)
		r.Post("/cache/reset", s.resetCache)
	})

	if s.static != nil {
		r.Handle("/*", http.FileServer(http.FS(s.static)))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("%s %s -> %d (%s) [%s]", r.Method, r.URL.Path, ww.Status(),
			time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

// loadCatalog returns the cached catalog, loading it on first use.
func (s *Server) loadCatalog(ctx context.Context) (*domain.Catalog, error) {
	s.mu.RLock()
	cat := s.cat
	s.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}

	cat, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()
	return cat, nil
}

// ── Handlers ─────────────────────────────────────────────────────

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	cat, err := s.loadCatalog(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	sel := filter.NewSelection(r.URL.Query()["tag"]...)
	visible := filter.Apply(cat.Recipes, sel)

	resp := listResponse{
		Total:    cat.Total,
		AllTags:  nonNil(cat.AllTags),
		Selected: nonNil(sel.Tags()),
		Recipes:  make([]summaryJSON, len(visible)),
	}
	for i, rs := range visible {
		resp.Recipes[i] = summaryJSON{ID: rs.ID, Name: rs.Name, Description: rs.Description, Tags: nonNil(rs.Tags)}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	d, ok := s.detailFor(w, r)
	if !ok {
		return
	}

	resp := detailJSON{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Servings:    servingsJSON{Quantity: d.Servings.Quantity, Unit: d.Servings.Unit},
		Ingredients: make([]ingredientJSON, len(d.Ingredients)),
		Steps:       nonNil(d.Steps),
		Notes:       nonNil(d.Notes),
		Tags:        nonNil(d.Tags),
	}
	for i, ing := range d.Ingredients {
		resp.Ingredients[i] = ingredientJSON{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit, Ratio: ing.Ratio}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) scaledRecipe(w http.ResponseWriter, r *http.Request) {
	target, ok := scale.ParseQuantity(r.URL.Query().Get("servings"))
	if !ok || target < 0 {
		s.writeError(w, http.StatusBadRequest, "servings must be a non-negative number")
		return
	}

	d, ok := s.detailFor(w, r)
	if !ok {
		return
	}

	inputs, ok := scale.ByServings(d.Ingredients, scale.ServingsFactor(d.Servings.Quantity, target))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "servings too large to scale")
		return
	}
	resp := scaledJSON{
		ID:          d.ID,
		Servings:    scale.FormatBaseline(target),
		Unit:        d.Servings.Unit,
		Ingredients: make([]scaledIngredientJSON, len(inputs)),
	}
	for i, in := range inputs {
		resp.Ingredients[i] = scaledIngredientJSON{Name: d.Ingredients[i].Name, Quantity: in.Value, Unit: d.Ingredients[i].Unit}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resetCache(w http.ResponseWriter, r *http.Request) {
	n := s.store.Len()
	s.store.Reset()
	s.mu.Lock()
	s.cat = nil
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]int{"evicted": n})
}

// detailFor resolves {id} against the catalog and loads its detail. On
// failure the response is already written.
func (s *Server) detailFor(w http.ResponseWriter, r *http.Request) (*domain.RecipeDetail, bool) {
	id := chi.URLParam(r, "id")
	cat, err := s.loadCatalog(r.Context())
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	if _, ok := cat.Find(id); !ok {
		s.writeError(w, http.StatusNotFound, "no recipe "+id)
		return nil, false
	}

	d, err := s.details.LoadDetail(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return d, true
}

// ── Responses ────────────────────────────────────────────────────

// StatusFor maps a service error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFetch), errors.Is(err, domain.ErrMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	} else {
		s.log.Warn("request failed: %v", err)
	}
	s.writeError(w, code, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write error: %v", err)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type summaryJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type listResponse struct {
	Total    int           `json:"totalRecipes"`
	AllTags  []string      `json:"allTags"`
	Selected []string      `json:"selected"`
	Recipes  []summaryJSON `json:"recipes"`
}

type servingsJSON struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

type ingredientJSON struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit,omitempty"`
	Ratio    *float64 `json:"ratio,omitempty"`
}

type detailJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Servings    servingsJSON     `json:"servings"`
	Ingredients []ingredientJSON `json:"ingredients"`
	Steps       []string         `json:"steps"`
	Notes       []string         `json:"notes"`
	Tags        []string         `json:"tags"`
}

type scaledIngredientJSON struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

type scaledJSON struct {
	ID          string                 `json:"id"`
	Servings    string                 `json:"servings"`
	Unit        string                 `json:"unit,omitempty"`
	Ingredients []scaledIngredientJSON `json:"ingredients"`
}
