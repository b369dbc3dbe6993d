package result

import (
	"github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
)

// ConstantScore is assigned when the store supplies no rank.
const ConstantScore = 1.0

// Result is a single search hit: a building projection, its resolved
// architects and a relevance score in [0,1].
type Result struct {
	building building.Building
	score    float64
}

// New creates a search result. Scores are clamped to [0,1].
func New(b building.Building, score float64) Result {
	switch {
	case score < 0:
		score = 0
	case score > 1:
		score = 1
	}
	return Result{building: b, score: score}
}

// Building returns the building projection.
func (r Result) Building() building.Building { return r.building }

// ID returns the building identifier.
func (r Result) ID() int64 { return r.building.ID }

// Score returns the relevance score.
func (r Result) Score() float64 { return r.score }

// WithBuilding returns a copy carrying b, keeping the score.
func (r Result) WithBuilding(b building.Building) Result {
	r.building = b
	return r
}

// Response is one page of search results.
type Response struct {
	Results []Result
	Total   int
	Limit   int
	Offset  int
	Path    strategy.Path
	// Partial is set when a time budget cut the search short.
	Partial bool
}

// Empty returns the response for a query with no matches.
func Empty(limit, offset int, path strategy.Path) Response {
	return Response{Results: []Result{}, Limit: limit, Offset: offset, Path: path}
}

// HasMore reports whether another page exists after this one.
func (r Response) HasMore() bool {
	return r.Offset+len(r.Results) < r.Total
}
