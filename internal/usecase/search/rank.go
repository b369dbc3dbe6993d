package search

import (
	"cmp"
	"slices"

	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
)

// constantScored wraps unranked rows with result.ConstantScore.
func constantScored(buildings []dombuilding.Building) []result.Result {
	out := make([]result.Result, len(buildings))
	for i, b := range buildings {
		out[i] = result.New(b, result.ConstantScore)
	}
	return out
}

// rank orders results by score descending. Equal scores keep their
// insertion order.
func rank(results []result.Result) {
	slices.SortStableFunc(results, func(a, b result.Result) int {
		return cmp.Compare(b.Score(), a.Score())
	})
}
