package pocketnavi

import "github.com/pocketnavi/pocketnavi/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound     = domain.ErrNotFound
	ErrInvalidQuery = domain.ErrInvalidQuery
)
