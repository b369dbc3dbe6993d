package db

import (
	"fmt"
	"regexp"

	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
)

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to splice into a query
// as a table or column name.
func ValidIdentifier(name string) bool {
	return identRegex.MatchString(name)
}

// QueryBuilder is a fluent builder for record queries.
type QueryBuilder struct {
	q RecordQuery
}

// From starts building a query over table.
func From(table string) *QueryBuilder {
	return &QueryBuilder{q: RecordQuery{Table: table}}
}

// Select sets the projected columns.
func (b *QueryBuilder) Select(fields ...string) *QueryBuilder {
	b.q.Fields = append(b.q.Fields, fields...)
	return b
}

// Where sets the filter.
func (b *QueryBuilder) Where(p predicate.Predicate) *QueryBuilder {
	b.q.Filter = p
	return b
}

// OrderBy appends an ascending or descending sort key.
func (b *QueryBuilder) OrderBy(field string, desc bool) *QueryBuilder {
	b.q.Order = append(b.q.Order, Order{Field: field, Desc: desc})
	return b
}

// Limit bounds the number of rows.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.q.Limit = n
	return b
}

// Offset skips rows.
func (b *QueryBuilder) Offset(n int) *QueryBuilder {
	b.q.Offset = n
	return b
}

// Build validates and returns the query.
func (b *QueryBuilder) Build() (*RecordQuery, error) {
	if err := b.q.Validate(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// MustBuild calls Build and panics on error.
func (b *QueryBuilder) MustBuild() *RecordQuery {
	q, err := b.Build()
	if err != nil {
		panic(err)
	}
	return q
}

// Validate checks identifiers and bounds.
func (q *RecordQuery) Validate() error {
	if !ValidIdentifier(q.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidQuery, q.Table)
	}
	for _, f := range q.Fields {
		if !ValidIdentifier(f) {
			return fmt.Errorf("%w: field %q", ErrInvalidQuery, f)
		}
	}
	for _, f := range q.Filter.Fields() {
		if !ValidIdentifier(f) {
			return fmt.Errorf("%w: filter field %q", ErrInvalidQuery, f)
		}
	}
	for _, o := range q.Order {
		if !ValidIdentifier(o.Field) {
			return fmt.Errorf("%w: order field %q", ErrInvalidQuery, o.Field)
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("%w: negative limit or offset", ErrInvalidQuery)
	}
	return nil
}
