package catalog

import (
	"context"

	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
)

// BuildingReader reads building records.
type BuildingReader interface {
	GetBySlug(ctx context.Context, slug string) (dombuilding.Building, error)
	ListByIDs(ctx context.Context, ids []int64) ([]dombuilding.Building, error)
}

// ArchitectReader reads individual architects and their group memberships.
type ArchitectReader interface {
	GetBySlug(ctx context.Context, slug string) (domarch.Architect, error)
	GroupsOf(ctx context.Context, individualID int64) ([]int64, error)
	BuildingIDs(ctx context.Context, groupIDs []int64) ([]int64, error)
}

// CreditResolver resolves the architects credited on a building.
type CreditResolver interface {
	Architects(ctx context.Context, buildingID int64) []domarch.Credit
}

// Lookup reads one entity by slug; the slug cache implements it.
type Lookup[T any] interface {
	GetBySlug(ctx context.Context, slug string) (T, error)
}
