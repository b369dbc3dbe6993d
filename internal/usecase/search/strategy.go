package search

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
)

// Strategy combines the matches of several terms with AND semantics.
type Strategy interface {
	Name() strategy.Name
	// Match returns the retained candidates in deterministic order.
	Match(ctx context.Context, terms []string) Candidates
}

// Candidates is the retained, order-preserved output of a Strategy.
type Candidates struct {
	Buildings []dombuilding.Building
	// Fallback is set when any term lookup went through the fallback chain.
	Fallback bool
	// Partial is set when the budget ended a lookup early.
	Partial bool
}

// termHits is the windowed outcome of one term lookup.
type termHits struct {
	buildings []dombuilding.Building
	total     int
	path      strategy.Path
	partial   bool
}

// termSearcher runs one term through the matcher and, on failure, the
// fallback chain.
type termSearcher interface {
	searchTerm(ctx context.Context, term string, limit, offset int) termHits
}

// newStrategy returns the combinator for name. Unknown names select StrictAnd.
func newStrategy(name strategy.Name, s termSearcher, window, concurrency int) Strategy {
	if name == strategy.FastAnd {
		return &FastAnd{searcher: s, window: window, concurrency: concurrency}
	}
	return &StrictAnd{searcher: s, window: window}
}

// StrictAnd matches the first term with a capped window and keeps the
// candidates that contain every other term. Matches of the first term
// beyond the window are never seen.
type StrictAnd struct {
	searcher termSearcher
	window   int
}

// Name implements Strategy.
func (s *StrictAnd) Name() strategy.Name { return strategy.StrictAnd }

// Match implements Strategy.
func (s *StrictAnd) Match(ctx context.Context, terms []string) Candidates {
	if len(terms) == 0 {
		return Candidates{}
	}
	hits := s.searcher.searchTerm(ctx, terms[0], s.window, 0)

	rest := lowerAll(terms[1:])
	out := Candidates{
		Fallback: hits.path == strategy.PathFallback,
		Partial:  hits.partial,
	}
	for i := range hits.buildings {
		if containsAll(&hits.buildings[i], rest) {
			out.Buildings = append(out.Buildings, hits.buildings[i])
		}
	}
	return out
}

// FastAnd windows every term concurrently, unions the candidates in term
// order and keeps those that satisfy every term. A term counts as
// satisfied when the store matched the candidate for it or the term is a
// case-insensitive substring of a searchable field.
type FastAnd struct {
	searcher    termSearcher
	window      int
	concurrency int
}

// Name implements Strategy.
func (s *FastAnd) Name() strategy.Name { return strategy.FastAnd }

// Match implements Strategy.
func (s *FastAnd) Match(ctx context.Context, terms []string) Candidates {
	perTerm := make([]termHits, len(terms))

	var g errgroup.Group
	g.SetLimit(max(s.concurrency, 1))
	for i, term := range terms {
		g.Go(func() error {
			perTerm[i] = s.searcher.searchTerm(ctx, term, s.window, 0)
			return nil
		})
	}
	_ = g.Wait()

	type candidate struct {
		b       dombuilding.Building
		matched []bool
	}
	var union []*candidate
	byID := make(map[int64]*candidate)

	var out Candidates
	for i, hits := range perTerm {
		out.Fallback = out.Fallback || hits.path == strategy.PathFallback
		out.Partial = out.Partial || hits.partial
		for _, b := range hits.buildings {
			c, ok := byID[b.ID]
			if !ok {
				c = &candidate{b: b, matched: make([]bool, len(terms))}
				byID[b.ID] = c
				union = append(union, c)
			}
			c.matched[i] = true
		}
	}

	lowered := lowerAll(terms)
	for _, c := range union {
		var pending []string
		for i, ok := range c.matched {
			if !ok {
				pending = append(pending, lowered[i])
			}
		}
		if containsAll(&c.b, pending) {
			out.Buildings = append(out.Buildings, c.b)
		}
	}
	return out
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}
