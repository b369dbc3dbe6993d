package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketnavi/pocketnavi/internal/domain"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/fold"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
)

// SearchSet returns the spellings of term tried against the store:
// verbatim, lower, upper, then the katakana and hiragana folds when the
// term has Japanese script. Duplicates are dropped, first seen wins.
func SearchSet(term string) []string {
	set := []string{term, strings.ToLower(term), strings.ToUpper(term)}
	if v, ok := fold.Fold(term); ok {
		set = append(set, v.Katakana, v.Hiragana)
	}
	return dedupStrings(set)
}

// Alternatives returns the spellings of term sent to a ranked search:
// verbatim plus the script folds. Case is left to the index tokenizer.
func Alternatives(term string) []string {
	set := []string{term}
	if v, ok := fold.Fold(term); ok {
		set = append(set, v.Katakana, v.Hiragana)
	}
	return dedupStrings(set)
}

// caseVariants returns verbatim, lower and upper, collapsed.
func caseVariants(term string) []string {
	return dedupStrings([]string{term, strings.ToLower(term), strings.ToUpper(term)})
}

func dedupStrings(in []string) []string {
	out := in[:0]
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Matcher turns one term into a single OR query over the searchable fields.
type Matcher struct {
	repo   Repository
	fields []string
}

// NewMatcher creates a matcher over all searchable fields.
func NewMatcher(repo Repository) *Matcher {
	return &Matcher{repo: repo, fields: dombuilding.SearchableFields}
}

// Predicate builds Or(Contains(field, candidate)) for every candidate of
// the search set and every searchable field.
func (m *Matcher) Predicate(term string) (predicate.Predicate, error) {
	set := SearchSet(term)
	if len(set) == 0 {
		return predicate.Predicate{}, fmt.Errorf("%w: empty term", domain.ErrInvalidQuery)
	}

	leaves := make([]predicate.Predicate, 0, len(set)*len(m.fields))
	for _, candidate := range set {
		for _, field := range m.fields {
			leaf, err := predicate.Contains(field, candidate)
			if err != nil {
				return predicate.Predicate{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
			}
			leaves = append(leaves, leaf)
		}
	}
	p, err := predicate.Or(leaves...)
	if err != nil {
		return predicate.Predicate{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return p, nil
}

// Match sends the combined predicate of term as one filterable query.
func (m *Matcher) Match(
	ctx context.Context, term string, limit, offset int,
) ([]dombuilding.Building, error) {
	p, err := m.Predicate(term)
	if err != nil {
		return nil, err
	}
	return m.repo.Match(ctx, p, limit, offset)
}

// containsAll reports whether every term is a case-insensitive substring
// of at least one searchable field of b. Terms must be lower-cased.
func containsAll(b *dombuilding.Building, lowered []string) bool {
	text := b.SearchableText()
	for i := range text {
		text[i] = strings.ToLower(text[i])
	}
	for _, term := range lowered {
		if !containsAny(text, term) {
			return false
		}
	}
	return true
}

func containsAny(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}
