// Package relation resolves the architects credited on a building.
package relation

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/logger"
)

// Resolver turns building ids into ordered architect credits.
// A failed lookup never fails the caller: it yields no credits and logs.
type Resolver struct {
	repo        Repository
	pool        *ants.Pool
	callTimeout time.Duration
	logger      *zap.Logger
}

// New creates a resolver backed by a worker pool of poolSize goroutines.
// callTimeout bounds each store call; zero disables the bound.
func New(repo Repository, poolSize int, callTimeout time.Duration, logger *zap.Logger) (*Resolver, error) {
	if poolSize <= 0 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create resolver pool: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{repo: repo, pool: pool, callTimeout: callTimeout, logger: logger}, nil
}

// Release stops the worker pool.
func (r *Resolver) Release() {
	r.pool.Release()
}

// Architects returns the credits of a building in composition order.
func (r *Resolver) Architects(ctx context.Context, buildingID int64) []domarch.Credit {
	credits, err := r.resolve(ctx, buildingID)
	if err != nil {
		r.log(ctx).Warn("architect resolution failed",
			zap.Int64("building_id", buildingID),
			zap.Error(err),
		)
		return []domarch.Credit{}
	}
	return credits
}

func (r *Resolver) resolve(ctx context.Context, buildingID int64) ([]domarch.Credit, error) {
	var groups []int64
	err := r.call(ctx, func(ctx context.Context) (err error) {
		groups, err = r.repo.GroupIDs(ctx, buildingID)
		return err
	})
	if err != nil || len(groups) == 0 {
		return []domarch.Credit{}, err
	}

	var comps []domarch.Composition
	err = r.call(ctx, func(ctx context.Context) (err error) {
		comps, err = r.repo.Compositions(ctx, groups)
		return err
	})
	if err != nil || len(comps) == 0 {
		return []domarch.Credit{}, err
	}
	slices.SortStableFunc(comps, func(a, b domarch.Composition) int {
		return a.OrderIndex - b.OrderIndex
	})

	ids := memberIDs(comps)
	var people []domarch.Architect
	err = r.call(ctx, func(ctx context.Context) (err error) {
		people, err = r.repo.Individuals(ctx, ids)
		return err
	})
	if err != nil {
		return []domarch.Credit{}, err
	}

	byID := make(map[int64]domarch.Architect, len(people))
	for _, a := range people {
		byID[a.ID] = a
	}
	credits := make([]domarch.Credit, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			credits = append(credits, a.Credit())
		}
	}
	return credits, nil
}

// memberIDs returns individual ids in composition order, first seen wins.
func memberIDs(comps []domarch.Composition) []int64 {
	seen := make(map[int64]struct{}, len(comps))
	ids := make([]int64, 0, len(comps))
	for _, c := range comps {
		if _, ok := seen[c.IndividualID]; ok {
			continue
		}
		seen[c.IndividualID] = struct{}{}
		ids = append(ids, c.IndividualID)
	}
	return ids
}

func (r *Resolver) call(ctx context.Context, fn func(context.Context) error) error {
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// Enrich fills the Architects of every building in place. Resolution runs
// on the worker pool; a task the pool rejects runs inline.
func (r *Resolver) Enrich(ctx context.Context, buildings []dombuilding.Building) {
	var wg sync.WaitGroup
	for i := range buildings {
		b := &buildings[i]
		task := func() {
			defer wg.Done()
			b.Architects = r.Architects(ctx, b.ID)
		}
		wg.Add(1)
		if err := r.pool.Submit(task); err != nil {
			r.log(ctx).Debug("resolver pool rejected task, running inline", zap.Error(err))
			task()
		}
	}
	wg.Wait()
}

func (r *Resolver) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, r.logger)
}
