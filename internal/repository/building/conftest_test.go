package building

import (
	"context"
	"testing"

	"github.com/pocketnavi/pocketnavi/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	queryFn    func(ctx context.Context, q *db.RecordQuery) ([]db.Row, error)
	rankedFn   func(ctx context.Context, q *db.TextQuery) (*db.RankedResult, error)
	ranked     bool
	lastQuery  *db.RecordQuery
	lastRanked *db.TextQuery
}

func (m *mockStore) Query(ctx context.Context, q *db.RecordQuery) ([]db.Row, error) {
	m.lastQuery = q
	if m.queryFn != nil {
		return m.queryFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) SupportsRankedSearch(_ context.Context) bool { return m.ranked }

func (m *mockStore) SearchRanked(ctx context.Context, q *db.TextQuery) (*db.RankedResult, error) {
	m.lastRanked = q
	if m.rankedFn != nil {
		return m.rankedFn(ctx, q)
	}
	return &db.RankedResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func buildingRow(id int64, slug, title string) db.Row {
	return db.Row{
		db.ColBuildingID:      id,
		db.ColSlug:            slug,
		db.ColTitle:           title,
		db.ColLocationEn:      "Osaka",
		db.ColCompletionYears: "1989",
		db.ColLat:             34.8,
		db.ColLng:             nil,
	}
}
