package pocketnavi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/db/memory"
	"github.com/pocketnavi/pocketnavi/internal/db/rest"
	"github.com/pocketnavi/pocketnavi/internal/db/sqlite"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/page"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
	architectrepo "github.com/pocketnavi/pocketnavi/internal/repository/architect"
	buildingrepo "github.com/pocketnavi/pocketnavi/internal/repository/building"
	cataloguc "github.com/pocketnavi/pocketnavi/internal/usecase/catalog"
	healthuc "github.com/pocketnavi/pocketnavi/internal/usecase/health"
	relationuc "github.com/pocketnavi/pocketnavi/internal/usecase/relation"
	searchuc "github.com/pocketnavi/pocketnavi/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	resolverPoolSize        = 8
)

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	SearchBuildings(ctx context.Context, raw string, limit, offset int) result.Response
	Config() searchuc.Config
}

type catalogUseCase interface {
	GetBuilding(ctx context.Context, slug string) (dombuilding.Building, error)
	GetArchitect(ctx context.Context, slug string) (domarch.Architect, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the pocketnavi SDK entry point. Safe for concurrent use.
type Client struct {
	store     db.Store
	release   func()
	searchSvc searchUseCase
	catalog   catalogUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the configured store and wires the search engine.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("pocketnavi: store required (use WithSQLite, WithREST or WithDataset)")
	}
	if cfg.strategy != "" && !strategy.Name(cfg.strategy).IsValid() {
		return nil, fmt.Errorf("pocketnavi: unknown strategy %q", cfg.strategy)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("pocketnavi: store not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "sqlite":
		s, err := sqlite.Open(ctx, cfg.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("pocketnavi: open sqlite: %w", err)
		}
		return s, nil
	case "rest":
		s, err := rest.New(&rest.Config{URL: cfg.restURL, APIKey: cfg.restAPIKey, SearchRPC: cfg.restRPC})
		if err != nil {
			return nil, fmt.Errorf("pocketnavi: create rest store: %w", err)
		}
		return s, nil
	case "memory":
		s, err := memory.Load(cfg.dataset)
		if err != nil {
			return nil, fmt.Errorf("pocketnavi: load dataset: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("pocketnavi: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := cfg.zapLogger
	if logger == nil {
		logger = zap.NewNop()
	}

	buildings := buildingrepo.New(store)
	architects := architectrepo.New(store)

	searchCfg := searchuc.DefaultConfig()
	if cfg.strategy != "" {
		searchCfg.Strategy = strategy.Name(cfg.strategy)
	}
	if cfg.candidateWindow > 0 {
		searchCfg.CandidateWindow = cfg.candidateWindow
	}
	if cfg.primaryTimeout > 0 {
		searchCfg.PrimaryTimeout = cfg.primaryTimeout
	}
	if cfg.budget > 0 {
		searchCfg.Budget = cfg.budget
	}

	resolver, err := relationuc.New(architects, resolverPoolSize, searchCfg.FallbackCallTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("pocketnavi: create resolver: %w", err)
	}

	return &Client{
		store:     store,
		release:   resolver.Release,
		searchSvc: searchuc.New(buildings, resolver, searchCfg, logger),
		catalog:   cataloguc.New(buildings, architects, resolver),
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// SearchBuildings returns one window of matches for a free-text query.
// An empty query yields an empty response. Store failures degrade to
// fallback or partial results; only invalid arguments return an error.
func (c *Client) SearchBuildings(ctx context.Context, query string, limit, offset int) (SearchResponse, error) {
	if limit < 0 || offset < 0 {
		return SearchResponse{}, fmt.Errorf("%w: limit and offset must be >= 0", ErrInvalidQuery)
	}
	if limit == 0 {
		limit = c.searchSvc.Config().PageSize
	}

	start := time.Now()
	resp := c.searchSvc.SearchBuildings(ctx, query, limit, offset)
	out := responseFromDomain(&resp)
	c.obs.observeSearch(start, &out)
	return out, nil
}

// Search returns the 1-indexed page of matches for a free-text query.
// Page numbers below 1 select the first page.
func (c *Client) Search(ctx context.Context, query string, number int) (Page, error) {
	p := page.New(number, c.searchSvc.Config().PageSize)

	resp, err := c.SearchBuildings(ctx, query, p.Size(), p.Offset())
	if err != nil {
		return Page{}, err
	}
	return Page{
		SearchResponse: resp,
		Number:         p.Number(),
		Size:           p.Size(),
		TotalPages:     p.TotalPages(resp.Total),
	}, nil
}

// Building returns a building with its architect credits.
func (c *Client) Building(ctx context.Context, slug string) (_ Building, err error) {
	start := time.Now()
	defer func() { c.obs.observe("building", start, err) }()

	b, err := c.catalog.GetBuilding(ctx, slug)
	if err != nil {
		return Building{}, fmt.Errorf("building %q: %w", slug, err)
	}
	return buildingFromDomain(&b), nil
}

// Architect returns an individual architect with their buildings.
func (c *Client) Architect(ctx context.Context, slug string) (_ Architect, err error) {
	start := time.Now()
	defer func() { c.obs.observe("architect", start, err) }()

	a, err := c.catalog.GetArchitect(ctx, slug)
	if err != nil {
		return Architect{}, fmt.Errorf("architect %q: %w", slug, err)
	}
	return architectFromDomain(&a), nil
}
