package architect

import (
	"context"
	"sync"
	"testing"

	"github.com/pocketnavi/pocketnavi/internal/db"
)

// mockStore implements the consumer interface for tests. tables maps a
// table name to the rows returned for it.
type mockStore struct {
	mu      sync.Mutex
	tables  map[string][]db.Row
	err     error
	queries []*db.RecordQuery
}

func (m *mockStore) Query(_ context.Context, q *db.RecordQuery) ([]db.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.tables[q.Table], nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{tables: map[string][]db.Row{}}
	return New(ms), ms
}
