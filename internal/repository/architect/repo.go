package architect

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/domain"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
	"github.com/pocketnavi/pocketnavi/internal/repository/storeerr"
)

// store is the consumer interface for architect reads (ISP).
type store interface {
	Query(ctx context.Context, q *db.RecordQuery) ([]db.Row, error)
}

// Repo reads the building → group → member → individual relation tables.
type Repo struct {
	store store
}

// New creates an architect repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// GroupIDs returns the group architects credited on a building.
func (r *Repo) GroupIDs(ctx context.Context, buildingID int64) ([]int64, error) {
	eq, _ := predicate.Eq(db.ColBuildingID, strconv.FormatInt(buildingID, 10))
	q := db.From(db.TableBuildingArchitects).Select(db.ColArchitectID).Where(eq).MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("groups of building %d: %w", buildingID, storeerr.Translate(err))
	}
	return column(rows, db.ColArchitectID), nil
}

// Compositions returns the members of the given groups ordered by
// order_index.
func (r *Repo) Compositions(ctx context.Context, groupIDs []int64) ([]domarch.Composition, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	in, _ := predicate.In(db.ColArchitectID, formatIDs(groupIDs)...)
	q := db.From(db.TableCompositions).
		Select(db.ColArchitectID, db.ColIndividualID, db.ColOrderIndex).
		Where(in).
		OrderBy(db.ColOrderIndex, false).
		MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("compositions: %w", storeerr.Translate(err))
	}
	out := make([]domarch.Composition, 0, len(rows))
	for _, row := range rows {
		if c, ok := parseComposition(row); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Individuals returns the individual architects with the given ids in
// store order.
func (r *Repo) Individuals(ctx context.Context, ids []int64) ([]domarch.Architect, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in, _ := predicate.In(db.ColIndividualID, formatIDs(ids)...)
	q := db.From(db.TableIndividuals).Select(db.IndividualColumns...).Where(in).MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("individuals: %w", storeerr.Translate(err))
	}
	out := make([]domarch.Architect, 0, len(rows))
	for _, row := range rows {
		if a, ok := parseIndividual(row); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetBySlug returns one individual architect without buildings.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (domarch.Architect, error) {
	eq, err := predicate.Eq(db.ColSlug, slug)
	if err != nil {
		return domarch.Architect{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	q := db.From(db.TableIndividuals).Select(db.IndividualColumns...).Where(eq).Limit(1).MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return domarch.Architect{}, fmt.Errorf("get architect %s: %w", slug, storeerr.Translate(err))
	}
	for _, row := range rows {
		if a, ok := parseIndividual(row); ok {
			return a, nil
		}
	}
	return domarch.Architect{}, fmt.Errorf("architect %s: %w", slug, domain.ErrNotFound)
}

// GroupsOf returns the groups an individual belongs to.
func (r *Repo) GroupsOf(ctx context.Context, individualID int64) ([]int64, error) {
	eq, _ := predicate.Eq(db.ColIndividualID, strconv.FormatInt(individualID, 10))
	q := db.From(db.TableCompositions).Select(db.ColArchitectID).Where(eq).MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("groups of architect %d: %w", individualID, storeerr.Translate(err))
	}
	return column(rows, db.ColArchitectID), nil
}

// BuildingIDs returns the buildings credited to any of the groups.
func (r *Repo) BuildingIDs(ctx context.Context, groupIDs []int64) ([]int64, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	in, _ := predicate.In(db.ColArchitectID, formatIDs(groupIDs)...)
	q := db.From(db.TableBuildingArchitects).Select(db.ColBuildingID).Where(in).MustBuild()

	rows, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("buildings of groups: %w", storeerr.Translate(err))
	}
	return column(rows, db.ColBuildingID), nil
}

func formatIDs(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}
