package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/page"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
	"github.com/pocketnavi/pocketnavi/internal/logger"
)

// FallbackResult is one page of the deduplicated per-field union.
type FallbackResult struct {
	Buildings []dombuilding.Building
	// Total is the deduplicated union size.
	Total int
	Calls  int
	Failed int
	// Partial is set when the caller's context ended before all calls returned.
	Partial bool
}

// Fallback replaces one failed combined query with many small ones:
// one per searchable field and case variant.
type Fallback struct {
	repo        Repository
	fields      []string
	callTimeout time.Duration
	concurrency int
	logger      *zap.Logger
}

// NewFallback creates a fallback controller.
func NewFallback(repo Repository, callTimeout time.Duration, concurrency int, logger *zap.Logger) *Fallback {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{
		repo:        repo,
		fields:      dombuilding.SearchableFields,
		callTimeout: callTimeout,
		concurrency: concurrency,
		logger:      logger,
	}
}

type fieldCall struct {
	field   string
	variant string
}

type callOutcome struct {
	rows []dombuilding.Building
	err  error
}

// Run issues the per-field calls for term concurrently, unions the rows
// in (field, variant) order deduplicated by id and returns the
// offset/limit window of the union. Failed calls are skipped.
func (f *Fallback) Run(ctx context.Context, term string, limit, offset int) FallbackResult {
	if offset < 0 {
		offset = 0
	}
	calls := f.plan(term)
	outcomes := make([]callOutcome, len(calls))
	want := offset + limit

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, c := range calls {
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i].err = ctx.Err()
				return nil
			}
			outcomes[i].rows, outcomes[i].err = f.call(ctx, c, want)
			return nil
		})
	}
	_ = g.Wait() // calls never return errors; failures live in outcomes

	log := logger.FromContextOr(ctx, f.logger)
	res := FallbackResult{Calls: len(calls)}
	var union []dombuilding.Building
	seen := make(map[int64]struct{})
	for i, o := range outcomes {
		if o.err != nil {
			res.Failed++
			log.Warn("fallback call failed, skipping",
				zap.String("term", term),
				zap.String("field", calls[i].field),
				zap.String("variant", calls[i].variant),
				zap.Error(o.err),
			)
			continue
		}
		for _, b := range o.rows {
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
			union = append(union, b)
		}
	}

	res.Partial = ctx.Err() != nil
	res.Total = len(union)
	start, end := page.Window(len(union), offset, limit)
	res.Buildings = union[start:end]
	return res
}

// plan lists the calls in deterministic order: fields outer, variants inner.
func (f *Fallback) plan(term string) []fieldCall {
	variants := caseVariants(term)
	calls := make([]fieldCall, 0, len(f.fields)*len(variants))
	for _, field := range f.fields {
		for _, v := range variants {
			calls = append(calls, fieldCall{field: field, variant: v})
		}
	}
	return calls
}

func (f *Fallback) call(ctx context.Context, c fieldCall, limit int) ([]dombuilding.Building, error) {
	leaf, err := predicate.Contains(c.field, c.variant)
	if err != nil {
		return nil, err
	}
	if f.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.callTimeout)
		defer cancel()
	}
	return f.repo.Match(ctx, leaf, limit, 0)
}
