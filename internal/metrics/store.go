package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/pocketnavi/pocketnavi/internal/db"
)

// InstrumentedStore records StoreCallDuration around every call of a
// record store.
type InstrumentedStore struct {
	db.Store
	backend string
}

// Compile-time check: InstrumentedStore implements db.Store.
var _ db.Store = (*InstrumentedStore)(nil)

// InstrumentStore wraps s; backend labels the series ("sqlite", "rest", ...).
func InstrumentStore(backend string, s db.Store) *InstrumentedStore {
	return &InstrumentedStore{Store: s, backend: backend}
}

// Query implements db.RecordQuerier.
func (s *InstrumentedStore) Query(ctx context.Context, q *db.RecordQuery) ([]db.Row, error) {
	start := time.Now()
	rows, err := s.Store.Query(ctx, q)
	s.observe(db.OpQuery, start, err)
	return rows, err
}

// SearchRanked implements db.RankedSearcher.
func (s *InstrumentedStore) SearchRanked(ctx context.Context, q *db.TextQuery) (*db.RankedResult, error) {
	start := time.Now()
	res, err := s.Store.SearchRanked(ctx, q)
	s.observe(db.OpSearchRanked, start, err)
	return res, err
}

// Ping implements db.Pinger.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.Store.Ping(ctx)
	s.observe(db.OpPing, start, err)
	return err
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	StoreCallDuration.WithLabelValues(s.backend, op, callStatus(err)).Observe(time.Since(start).Seconds())
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, db.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
