package db

import "github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"

// Row is one untyped record as returned by a store. It never leaves the
// repository layer.
type Row map[string]any

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// RecordQuery is the input for a filterable record query.
type RecordQuery struct {
	Table  string
	Filter predicate.Predicate // zero value matches all rows
	Fields []string            // empty selects all columns
	Order  []Order
	Limit  int // 0 = no limit
	Offset int
}

// TextQuery is the input for ranked full-text search.
type TextQuery struct {
	// Query is the normalized query string.
	Query string
	// Terms holds, per query term, the alternatives any of which satisfies
	// the term. The verbatim term comes first. Terms are combined with AND.
	Terms  [][]string
	Limit  int
	Offset int
}

// RankedResult is the output of a ranked search.
type RankedResult struct {
	Total int
	Rows  []RankedRow
}

// RankedRow is one ranked hit. Rank is normalized to [0,1], higher is better.
type RankedRow struct {
	Row  Row
	Rank float64
}
