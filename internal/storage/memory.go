// Package storage provides the recipe detail cache.
package storage

import (
	"sync"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.DetailStore = (*MemoryStore)(nil)

// MemoryStore is an unbounded in-memory detail cache. Entries never expire
// and cannot be removed one at a time; its lifetime is one viewer session.
// Safe for concurrent access.
type MemoryStore struct {
	mu      sync.RWMutex
	details map[string]*domain.RecipeDetail
	log     *logger.Logger
}

// NewMemoryStore creates an empty detail cache.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		details: make(map[string]*domain.RecipeDetail),
		log:     log,
	}
}

// Get returns the cached detail for id.
func (s *MemoryStore) Get(id string) (*domain.RecipeDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.details[id]
	return d, ok
}

// Has reports whether id is cached.
func (s *MemoryStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.details[id]
	return ok
}

// Set caches detail under id, replacing any existing entry.
func (s *MemoryStore) Set(id string, detail *domain.RecipeDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.details[id]; ok {
		s.log.Warn("detail cache: overwriting %s", id)
	}
	s.details[id] = detail
	s.log.Debug("detail cache: stored %s (%d entries)", id, len(s.details))
}

// Len returns the number of cached details.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.details)
}

// Reset drops every entry. The viewer never calls it; long-running hosts
// use it to pick up edited recipe files.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	n := len(s.details)
	s.details = make(map[string]*domain.RecipeDetail)
	s.mu.Unlock()
	s.log.Info("detail cache: reset (%d entries dropped)", n)
}
