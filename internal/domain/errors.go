package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrFetch        = errors.New("fetch failed")
	ErrMalformed    = errors.New("malformed document")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoRecipe     = errors.New("no recipe open")
)
