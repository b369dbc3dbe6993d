// Package memory is an in-process catalog store over a loaded dataset.
// It answers filterable queries only.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/db/dataset"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store holds every table in memory. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]db.Row
	closed bool
}

// New creates a store over the dataset rows.
func New(d *dataset.Dataset) *Store {
	return &Store{tables: d.Rows()}
}

// Load reads a dataset file into a new store.
func Load(path string) (*Store, error) {
	d, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// Ping fails once the store is closed.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: db.ErrUnavailable}
	}
	return nil
}

// Close releases the tables.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.tables = nil
	s.mu.Unlock()
}

// WaitForReady returns immediately: the data is already loaded.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// SupportsRankedSearch is always false.
func (s *Store) SupportsRankedSearch(_ context.Context) bool { return false }

// SearchRanked is not available in memory.
func (s *Store) SearchRanked(_ context.Context, _ *db.TextQuery) (*db.RankedResult, error) {
	return nil, &db.Error{Op: db.OpSearchRanked, Err: db.ErrUnsupported}
}

// Query filters, orders and windows one table.
func (s *Store) Query(ctx context.Context, q *db.RecordQuery) ([]db.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, &db.Error{Op: db.OpQuery, Err: db.ErrUnavailable}
	}
	rows, ok := s.tables[q.Table]
	if !ok {
		s.mu.RUnlock()
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("%w: unknown table %q", db.ErrInvalidQuery, q.Table)}
	}

	var matched []db.Row
	for _, row := range rows {
		if q.Filter.Matches(row.Text) {
			matched = append(matched, row)
		}
	}
	s.mu.RUnlock()

	if len(q.Order) > 0 {
		slices.SortStableFunc(matched, func(a, b db.Row) int {
			for _, o := range q.Order {
				c := compareColumn(a, b, o.Field)
				if o.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	matched = window(matched, q.Limit, q.Offset)
	out := make([]db.Row, len(matched))
	for i, row := range matched {
		out[i] = project(row, q.Fields)
	}
	return out, nil
}

func window(rows []db.Row, limit, offset int) []db.Row {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func project(row db.Row, fields []string) db.Row {
	out := make(db.Row, max(len(fields), len(row)))
	if len(fields) == 0 {
		for k, v := range row {
			out[k] = v
		}
		return out
	}
	for _, f := range fields {
		out[f] = row[f]
	}
	return out
}

// compareColumn orders numbers numerically and everything else as text.
// Missing values sort first.
func compareColumn(a, b db.Row, col string) int {
	if x, ok := a.Int64(col); ok {
		if y, ok := b.Int64(col); ok {
			return cmp.Compare(x, y)
		}
	}
	xs, xok := a.Text(col)
	ys, yok := b.Text(col)
	switch {
	case !xok && !yok:
		return 0
	case !xok:
		return -1
	case !yok:
		return 1
	}
	return cmp.Compare(xs, ys)
}
