// Package query turns raw user input into a canonical search query.
package query

import (
	"strings"
	"unicode"
)

// Normalize trims the input and collapses every whitespace run, including the
// ideographic space U+3000, into a single ASCII space.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	pendingSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Split returns the whitespace-delimited terms of a normalized query.
func Split(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// Query is a normalized search query (immutable value object).
type Query struct {
	raw        string
	normalized string
	terms      []string
}

// New normalizes raw input and splits it into terms.
func New(raw string) Query {
	n := Normalize(raw)
	return Query{raw: raw, normalized: n, terms: Split(n)}
}

// Raw returns the input as typed.
func (q Query) Raw() string { return q.raw }

// Normalized returns the canonical query string.
func (q Query) Normalized() string { return q.normalized }

// Terms returns the ordered terms. Callers must not modify the slice.
func (q Query) Terms() []string { return q.terms }

// IsEmpty reports a query with no terms. Empty queries never reach the store.
func (q Query) IsEmpty() bool { return len(q.terms) == 0 }

// IsMultiTerm reports whether the AND combinator applies.
func (q Query) IsMultiTerm() bool { return len(q.terms) > 1 }
