package building

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/domain"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
	"github.com/pocketnavi/pocketnavi/internal/repository/storeerr"
)

// store is the consumer interface for building reads (ISP).
type store interface {
	Query(ctx context.Context, q *db.RecordQuery) ([]db.Row, error)
	SupportsRankedSearch(ctx context.Context) bool
	SearchRanked(ctx context.Context, q *db.TextQuery) (*db.RankedResult, error)
}

// Repo implements the building reads of the search and catalog use cases.
type Repo struct {
	store store
}

// New creates a building repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Match runs one filterable query over the searchable projection. Filter
// fields are domain field names. Rows come back in building id order.
func (r *Repo) Match(ctx context.Context, filter predicate.Predicate, limit, offset int) ([]dombuilding.Building, error) {
	q, err := db.From(db.TableBuildings).
		Select(db.BuildingProjection...).
		Where(filter.MapFields(Column)).
		OrderBy(db.ColBuildingID, false).
		Limit(limit).
		Offset(offset).
		Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("match buildings: %w", storeerr.Translate(err))
	}
	return parseRows(rows), nil
}

// SupportsRankedSearch proxies the capability check from the store.
func (r *Repo) SupportsRankedSearch(ctx context.Context) bool {
	return r.store.SupportsRankedSearch(ctx)
}

// SearchRanked runs the store's native full-text search. terms holds the
// alternatives of each query term. Returns one window of hits scored by
// the store rank and the full match count.
func (r *Repo) SearchRanked(
	ctx context.Context, query string, terms [][]string, limit, offset int,
) ([]result.Result, int, error) {
	res, err := r.store.SearchRanked(ctx, &db.TextQuery{
		Query:  query,
		Terms:  terms,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("ranked search: %w", storeerr.Translate(err))
	}

	hits := make([]result.Result, 0, len(res.Rows))
	for _, row := range res.Rows {
		b, ok := parseRow(row.Row)
		if !ok {
			continue
		}
		hits = append(hits, result.New(b, row.Rank))
	}
	return hits, res.Total, nil
}

// GetBySlug returns the building detail.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (dombuilding.Building, error) {
	eq, err := predicate.Eq(db.ColSlug, slug)
	if err != nil {
		return dombuilding.Building{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	q := db.From(db.TableBuildings).Select(db.BuildingDetail...).Where(eq).Limit(1).MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return dombuilding.Building{}, fmt.Errorf("get building %s: %w", slug, storeerr.Translate(err))
	}
	list := parseRows(rows)
	if len(list) == 0 {
		return dombuilding.Building{}, fmt.Errorf("building %s: %w", slug, domain.ErrNotFound)
	}
	return list[0], nil
}

// ListByIDs returns the buildings with the given ids, newest completion
// year first.
func (r *Repo) ListByIDs(ctx context.Context, ids []int64) ([]dombuilding.Building, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, err := predicate.In(db.ColBuildingID, formatIDs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	q := db.From(db.TableBuildings).
		Select(db.BuildingProjection...).
		Where(in).
		OrderBy(db.ColCompletionYears, true).
		OrderBy(db.ColBuildingID, false).
		MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", storeerr.Translate(err))
	}
	return parseRows(rows), nil
}

func formatIDs(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}
