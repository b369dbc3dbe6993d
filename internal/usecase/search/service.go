// Package search implements building search: the matcher, the AND
// strategies, the fallback chain and pagination.
package search

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pocketnavi/pocketnavi/internal/domain"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/failure"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/page"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/query"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
	"github.com/pocketnavi/pocketnavi/internal/logger"
	"github.com/pocketnavi/pocketnavi/internal/metrics"
)

const tracerName = "github.com/pocketnavi/pocketnavi/internal/usecase/search"

// Engine answers free-text building searches. It never fails: every
// store failure degrades to fallback, partial or empty results.
type Engine struct {
	repo     Repository
	enricher Enricher
	matcher  *Matcher
	fallback *Fallback
	strategy Strategy
	cfg      Config
	logger   *zap.Logger
}

// New creates a search engine. enricher may be nil, leaving architects unset.
func New(repo Repository, enricher Enricher, cfg Config, logger *zap.Logger) *Engine {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		repo:     repo,
		enricher: enricher,
		matcher:  NewMatcher(repo),
		fallback: NewFallback(repo, cfg.FallbackCallTimeout, cfg.Concurrency, logger),
		cfg:      cfg,
		logger:   logger,
	}
	e.strategy = newStrategy(cfg.Strategy, e, cfg.CandidateWindow, cfg.Concurrency)
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// SearchPage runs a search for a 1-indexed page of the configured size.
func (e *Engine) SearchPage(ctx context.Context, raw string, number int) (result.Response, page.Page) {
	p := page.New(number, e.cfg.PageSize)
	return e.SearchBuildings(ctx, raw, p.Size(), p.Offset()), p
}

// SearchBuildings returns one window of the buildings matching raw.
// A non-positive limit selects the configured page size.
func (e *Engine) SearchBuildings(ctx context.Context, raw string, limit, offset int) result.Response {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "search.buildings")
	defer span.End()

	if limit <= 0 {
		limit = e.cfg.PageSize
	}
	if offset < 0 {
		offset = 0
	}

	q := query.New(raw)
	if q.IsEmpty() {
		resp := result.Empty(limit, offset, strategy.PathEmpty)
		e.observe(ctx, resp, start)
		return resp
	}

	ctx = logger.ContextWithLogger(ctx, e.log(ctx).With(
		zap.String("query", q.Normalized()),
		zap.String("strategy", string(e.strategy.Name())),
	))
	span.SetAttributes(
		attribute.String("search.query", q.Normalized()),
		attribute.Int("search.terms", len(q.Terms())),
		attribute.Int("search.limit", limit),
		attribute.Int("search.offset", offset),
	)

	resp := e.search(ctx, q, limit, offset)
	e.enrich(ctx, resp.Results)

	span.SetAttributes(
		attribute.String("search.path", string(resp.Path)),
		attribute.Int("search.total", resp.Total),
		attribute.Bool("search.partial", resp.Partial),
	)
	e.observe(ctx, resp, start)
	return resp
}

func (e *Engine) search(ctx context.Context, q query.Query, limit, offset int) result.Response {
	if e.cfg.PreferRanked && e.repo.SupportsRankedSearch(ctx) {
		if resp, ok := e.searchRanked(ctx, q, limit, offset); ok {
			return resp
		}
	}
	if !q.IsMultiTerm() {
		return e.searchSingle(ctx, q.Terms()[0], limit, offset)
	}
	return e.searchMulti(ctx, q.Terms(), limit, offset)
}

// searchRanked runs the store's full-text search. ok is false when the
// filterable path should take over.
func (e *Engine) searchRanked(
	ctx context.Context, q query.Query, limit, offset int,
) (result.Response, bool) {
	terms := make([][]string, len(q.Terms()))
	for i, t := range q.Terms() {
		terms[i] = Alternatives(t)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.PrimaryTimeout)
	defer cancel()

	hits, total, err := e.repo.SearchRanked(callCtx, q.Normalized(), terms, limit, offset)
	if err == nil {
		rank(hits)
		return result.Response{
			Results: hits,
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			Path:    strategy.PathRanked,
		}, true
	}

	if ctx.Err() != nil {
		resp := result.Empty(limit, offset, strategy.PathRanked)
		resp.Partial = true
		return resp, true
	}

	if errors.Is(err, domain.ErrUnsupported) {
		e.log(ctx).Debug("query not expressible as ranked search, using filterable path", zap.Error(err))
		metrics.SearchFallbackTotal.WithLabelValues("ranked_unsupported").Inc()
		return result.Response{}, false
	}
	kind := failure.Classify(err)
	if kind == failure.NotFound {
		return result.Empty(limit, offset, strategy.PathRanked), true
	}
	e.log(ctx).Warn("ranked search failed, using filterable path",
		zap.String("op", "search_ranked"),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
	metrics.SearchFallbackTotal.WithLabelValues("ranked_" + kind.String()).Inc()
	return result.Response{}, false
}

func (e *Engine) searchSingle(ctx context.Context, term string, limit, offset int) result.Response {
	hits := e.searchTerm(ctx, term, limit, offset)
	return result.Response{
		Results: constantScored(hits.buildings),
		Total:   hits.total,
		Limit:   limit,
		Offset:  offset,
		Path:    hits.path,
		Partial: hits.partial,
	}
}

func (e *Engine) searchMulti(ctx context.Context, terms []string, limit, offset int) result.Response {
	budgetCtx, cancel := context.WithTimeout(ctx, e.cfg.Budget)
	defer cancel()

	c := e.strategy.Match(budgetCtx, terms)
	if budgetCtx.Err() != nil {
		c.Partial = true
	}
	if c.Partial {
		e.log(ctx).Warn("search budget exhausted, returning accumulated candidates",
			zap.Int("candidates", len(c.Buildings)),
			zap.Duration("budget", e.cfg.Budget),
		)
	}

	results := constantScored(c.Buildings)
	rank(results)
	start, end := page.Window(len(results), offset, limit)
	return result.Response{
		Results: results[start:end],
		Total:   len(results),
		Limit:   limit,
		Offset:  offset,
		Path:    strategy.PathAnd,
		Partial: c.Partial,
	}
}

// searchTerm implements termSearcher: the combined query of one term,
// probing one row past the window to estimate the total, then the
// fallback chain on a recoverable failure.
func (e *Engine) searchTerm(ctx context.Context, term string, limit, offset int) termHits {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.PrimaryTimeout)
	rows, err := e.matcher.Match(callCtx, term, limit+1, offset)
	cancel()

	if err == nil {
		total := offset + len(rows)
		if len(rows) > limit {
			rows = rows[:limit]
		}
		return termHits{buildings: rows, total: total, path: strategy.PathMatch}
	}

	log := e.log(ctx).With(zap.String("term", term))
	if ctx.Err() != nil {
		log.Warn("search cancelled before the combined query returned", zap.Error(err))
		return termHits{path: strategy.PathMatch, partial: true}
	}

	kind := failure.Classify(err)
	if kind == failure.NotFound {
		return termHits{path: strategy.PathMatch}
	}
	log.Warn("combined query failed, falling back to per-field queries",
		zap.String("op", "match"),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
	metrics.SearchFallbackTotal.WithLabelValues(kind.String()).Inc()

	fbCtx, cancelFb := context.WithTimeout(ctx, e.cfg.Budget)
	defer cancelFb()

	fb := e.fallback.Run(fbCtx, term, limit, offset)
	path := strategy.PathFallback
	if fb.Calls > 0 && fb.Failed == fb.Calls {
		path = strategy.PathFailed
		log.Error("every fallback call failed", zap.Int("calls", fb.Calls))
	}
	return termHits{buildings: fb.Buildings, total: fb.Total, path: path, partial: fb.Partial}
}

func (e *Engine) enrich(ctx context.Context, results []result.Result) {
	if e.enricher == nil || len(results) == 0 {
		return
	}
	buildings := make([]dombuilding.Building, len(results))
	for i := range results {
		buildings[i] = results[i].Building()
	}
	e.enricher.Enrich(ctx, buildings)
	for i := range results {
		results[i] = results[i].WithBuilding(buildings[i])
	}
}

func (e *Engine) observe(ctx context.Context, resp result.Response, start time.Time) {
	elapsed := time.Since(start)
	metrics.SearchRequestsTotal.WithLabelValues(string(resp.Path)).Inc()
	metrics.SearchDuration.WithLabelValues(string(resp.Path)).Observe(elapsed.Seconds())
	if resp.Partial {
		metrics.SearchPartialTotal.Inc()
	}

	e.log(ctx).Debug("search completed",
		zap.String("path", string(resp.Path)),
		zap.Int("total", resp.Total),
		zap.Int("returned", len(resp.Results)),
		zap.Bool("partial", resp.Partial),
		zap.Duration("elapsed", elapsed),
	)
}

func (e *Engine) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, e.logger)
}
