package search

import (
	"context"

	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
)

// Repository defines the storage contract for building search.
type Repository interface {
	// Match runs one filterable query; rows come back in a stable order.
	Match(
		ctx context.Context, filter predicate.Predicate, limit, offset int,
	) ([]dombuilding.Building, error)

	// SearchRanked runs the store's native full-text search. terms holds
	// the alternatives of every query term.
	SearchRanked(
		ctx context.Context, query string, terms [][]string, limit, offset int,
	) ([]result.Result, int, error)

	SupportsRankedSearch(ctx context.Context) bool
}

// Enricher fills the architect credits of a page of buildings.
type Enricher interface {
	Enrich(ctx context.Context, buildings []dombuilding.Building)
}
