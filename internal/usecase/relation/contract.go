package relation

import (
	"context"

	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
)

// Repository reads the building → group → member → individual chain.
type Repository interface {
	GroupIDs(ctx context.Context, buildingID int64) ([]int64, error)
	Compositions(ctx context.Context, groupIDs []int64) ([]domarch.Composition, error)
	Individuals(ctx context.Context, ids []int64) ([]domarch.Architect, error)
}
