package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pocketnavi/pocketnavi/internal/config"
	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/db/lru"
	"github.com/pocketnavi/pocketnavi/internal/db/memory"
	dbRedis "github.com/pocketnavi/pocketnavi/internal/db/redis"
	"github.com/pocketnavi/pocketnavi/internal/db/rest"
	"github.com/pocketnavi/pocketnavi/internal/db/sqlite"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
	logpkg "github.com/pocketnavi/pocketnavi/internal/logger"
	"github.com/pocketnavi/pocketnavi/internal/metrics"
	architectrepo "github.com/pocketnavi/pocketnavi/internal/repository/architect"
	buildingrepo "github.com/pocketnavi/pocketnavi/internal/repository/building"
	"github.com/pocketnavi/pocketnavi/internal/repository/slugcache"
	cataloguc "github.com/pocketnavi/pocketnavi/internal/usecase/catalog"
	healthuc "github.com/pocketnavi/pocketnavi/internal/usecase/health"
	relationuc "github.com/pocketnavi/pocketnavi/internal/usecase/relation"
	searchuc "github.com/pocketnavi/pocketnavi/internal/usecase/search"
)

const (
	metaConfig = "config"
	metaLogger = "logger"
)

// setup loads the configuration and the logger into the app metadata.
func setup(c *cli.Context) error {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	c.App.Metadata = map[string]any{metaConfig: cfg, metaLogger: logger}
	return nil
}

func teardown(c *cli.Context) error {
	if l, ok := c.App.Metadata[metaLogger].(*zap.Logger); ok {
		_ = l.Sync()
	}
	return nil
}

func configFrom(c *cli.Context) config.Config {
	cfg, _ := c.App.Metadata[metaConfig].(config.Config)
	return cfg
}

func loggerFrom(c *cli.Context) *zap.Logger {
	if l, ok := c.App.Metadata[metaLogger].(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// app is the composition root shared by serve and search.
type app struct {
	store    db.Store
	cache    db.KVStore
	resolver *relationuc.Resolver
	engine   *searchuc.Engine
	catalog  *cataloguc.Service
	health   *healthuc.Service
}

func (a *app) Close() {
	if a.resolver != nil {
		a.resolver.Release()
	}
	if closer, ok := a.cache.(interface{ Close() }); ok {
		closer.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterSearchMetrics()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{store: metrics.InstrumentStore(cfg.Store.Driver, store)}

	readiness := time.Duration(cfg.Store.ReadinessTimeout) * time.Second
	if err := a.store.WaitForReady(ctx, readiness); err != nil {
		a.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	logger.Info("Connected to store", zap.String("driver", cfg.Store.Driver))

	a.cache, err = openCache(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	buildings := buildingrepo.New(a.store)
	architects := architectrepo.New(a.store)

	a.resolver, err = relationuc.New(architects, cfg.Search.ResolverPoolSize, cfg.Search.FallbackCallTimeout(), logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	a.engine = searchuc.New(buildings, a.resolver, searchConfig(cfg), logger)

	a.catalog = cataloguc.New(buildings, architects, a.resolver)
	if a.cache != nil {
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		a.catalog.WithLookups(
			slugcache.New[dombuilding.Building]("building", a.catalog.LoadBuilding, a.cache, ttl,
				metrics.CatalogCacheTotal, logger),
			slugcache.New[domarch.Architect]("architect", a.catalog.LoadArchitect, a.cache, ttl,
				metrics.CatalogCacheTotal, logger),
		)
	}

	// Only a remote cache is worth pinging.
	var cachePinger healthuc.Pinger
	if p, ok := a.cache.(healthuc.Pinger); ok {
		cachePinger = p
	}
	a.health = healthuc.New(a.store, cachePinger)

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Store.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Store.SQLite.Path, err)
		}
		logger.Debug("SQLite driver", zap.String("mode", sqlite.BuildMode))
		return s, nil
	case config.DriverREST:
		r := cfg.Store.REST
		s, err := rest.New(&rest.Config{
			URL:         r.URL,
			APIKey:      r.APIKey,
			SearchRPC:   r.SearchRPC,
			Timeout:     time.Duration(r.TimeoutSec) * time.Second,
			RatePerSec:  r.RatePerSec,
			Burst:       r.Burst,
			MaxFailures: r.Breaker.MaxFailures,
			OpenTimeout: time.Duration(r.Breaker.OpenTimeoutSec) * time.Second,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create rest store: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		s, err := memory.Load(cfg.Store.Memory.Dataset)
		if err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", cfg.Store.Memory.Dataset, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openCache(cfg *config.Config) (db.KVStore, error) {
	switch cfg.Cache.Driver {
	case config.CacheMemory:
		s, err := lru.New(cfg.Cache.Size)
		if err != nil {
			return nil, fmt.Errorf("create lru cache: %w", err)
		}
		return s, nil
	case config.CacheRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Redis.Addrs,
			Password: cfg.Cache.Redis.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis cache: %w", err)
		}
		return s, nil
	default:
		return nil, nil
	}
}

func searchConfig(cfg *config.Config) searchuc.Config {
	return searchuc.Config{
		Strategy:            strategy.Name(cfg.Search.Strategy),
		PageSize:            cfg.Search.PageSize,
		CandidateWindow:     cfg.Search.CandidateWindow,
		PrimaryTimeout:      cfg.Search.PrimaryTimeout(),
		FallbackCallTimeout: cfg.Search.FallbackCallTimeout(),
		Budget:              cfg.Search.Budget(),
		Concurrency:         cfg.Search.Concurrency,
		PreferRanked:        *cfg.Search.PreferRanked,
	}
}
