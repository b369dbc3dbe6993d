package pocketnavi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"github.com/pocketnavi/pocketnavi/internal/domain"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
	healthuc "github.com/pocketnavi/pocketnavi/internal/usecase/health"
)

var sampleDataset = filepath.Join("..", "..", "data", "sample.json")

func TestNew_NoStore(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no store configured")
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New(context.Background(), WithDataset(sampleDataset), WithStrategy("fuzzy"))
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown"}
	if _, err := createStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_MissingDataset(t *testing.T) {
	_, err := New(context.Background(), WithDataset(filepath.Join(t.TempDir(), "missing.json")))
	if err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	reg := prometheus.NewRegistry()
	for _, o := range []Option{
		WithREST("https://db.example", "key", "search_buildings"),
		WithStrategy(FastAnd),
		WithCandidateWindow(80),
		WithTimeouts(time.Second, 3*time.Second),
		WithLogger(slog.Default()),
		WithZapLogger(zap.NewNop()),
		WithPrometheus(reg),
	} {
		o.apply(cfg)
	}
	if cfg.driver != "rest" || cfg.restURL != "https://db.example" || cfg.restRPC != "search_buildings" {
		t.Errorf("rest options = %+v", cfg)
	}
	if cfg.strategy != FastAnd || cfg.candidateWindow != 80 {
		t.Errorf("search options = %+v", cfg)
	}
	if cfg.primaryTimeout != time.Second || cfg.budget != 3*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.primaryTimeout, cfg.budget)
	}
	if cfg.logger == nil || cfg.zapLogger == nil || cfg.metricsReg == nil {
		t.Error("observability options not applied")
	}
}

// --- Dataset-backed client ---

func newDatasetClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithDataset(sampleDataset)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestSearch_Dataset(t *testing.T) {
	c := newDatasetClient(t)

	p, err := c.Search(context.Background(), "教会", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.Total != 2 || len(p.Results) != 2 || p.TotalPages != 1 || p.Number != 1 {
		t.Fatalf("page = %+v", p)
	}
	for _, r := range p.Results {
		if len(r.Building.Architects) == 0 || r.Building.Architects[0].Slug != "tadao-ando" {
			t.Errorf("%s credits = %+v", r.Building.Slug, r.Building.Architects)
		}
	}
}

func TestSearch_MultiTermStrategies(t *testing.T) {
	for _, s := range []Strategy{StrictAnd, FastAnd} {
		t.Run(string(s), func(t *testing.T) {
			c := newDatasetClient(t, WithStrategy(s))
			resp, err := c.SearchBuildings(context.Background(), "教会 大阪", 10, 0)
			if err != nil {
				t.Fatal(err)
			}
			if resp.Path != string(strategy.PathAnd) {
				t.Errorf("path = %s", resp.Path)
			}
			if len(resp.Results) != 1 || resp.Results[0].Building.Slug != "church-of-the-light" {
				t.Errorf("results = %+v", resp.Results)
			}
		})
	}
}

func TestBuildingAndArchitect_Dataset(t *testing.T) {
	c := newDatasetClient(t)
	ctx := context.Background()

	b, err := c.Building(ctx, "church-of-the-light")
	if err != nil {
		t.Fatalf("Building: %v", err)
	}
	if b.Title != "光の教会" || len(b.Architects) == 0 {
		t.Errorf("building = %+v", b)
	}

	a, err := c.Architect(ctx, "tadao-ando")
	if err != nil {
		t.Fatalf("Architect: %v", err)
	}
	if a.NameEn != "Tadao Ando" || len(a.Buildings) == 0 {
		t.Errorf("architect = %+v", a)
	}

	if _, err := c.Building(ctx, "no-such-building"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing building err = %v", err)
	}
	if _, err := c.Architect(ctx, "bad slug!"); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("bad slug err = %v", err)
	}
}

func TestWithZapLogger_ReceivesEngineLogs(t *testing.T) {
	core, logs := zapobserver.New(zapcore.DebugLevel)
	c := newDatasetClient(t, WithZapLogger(zap.New(core)))

	if _, err := c.SearchBuildings(context.Background(), "教会", 10, 0); err != nil {
		t.Fatal(err)
	}
	if logs.FilterMessage("search completed").Len() != 1 {
		t.Errorf("engine logs = %v", logs.All())
	}
}

func TestHealth_Dataset(t *testing.T) {
	c := newDatasetClient(t)
	h := c.Health(context.Background())
	if h.Status != "ok" || h.Checks["store"] != "ok" {
		t.Errorf("health = %+v", h)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

// --- Mocked use cases ---

func TestSearchBuildings_Arguments(t *testing.T) {
	var gotLimit, gotOffset int
	c := testClient(&mockSearchUC{searchFn: func(_ context.Context, _ string, limit, offset int) result.Response {
		gotLimit, gotOffset = limit, offset
		return result.Empty(limit, offset, strategy.PathEmpty)
	}}, nil)

	if _, err := c.SearchBuildings(context.Background(), "x", -1, 0); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("negative limit err = %v", err)
	}
	for _, n := range []int{0, -3} {
		p, err := c.Search(context.Background(), "x", n)
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		if p.Number != 1 || gotOffset != 0 {
			t.Errorf("page %d = number %d offset %d, want the first page", n, p.Number, gotOffset)
		}
	}

	if _, err := c.SearchBuildings(context.Background(), "x", 0, 5); err != nil {
		t.Fatal(err)
	}
	if gotLimit != 10 || gotOffset != 5 {
		t.Errorf("limit/offset = %d/%d, want default page size", gotLimit, gotOffset)
	}

	if _, err := c.Search(context.Background(), "x", 3); err != nil {
		t.Fatal(err)
	}
	if gotOffset != 20 {
		t.Errorf("page 3 offset = %d, want 20", gotOffset)
	}
}

func TestSearchBuildings_Conversion(t *testing.T) {
	c := testClient(&mockSearchUC{searchFn: func(_ context.Context, _ string, limit, offset int) result.Response {
		return result.Response{
			Results: []result.Result{result.New(dombuilding.Building{
				ID: 4, Slug: "osaka-station-city", Title: "大阪ステーションシティ",
				BuildingTypes: "駅,商業施設",
				Architects:    []domarch.Credit{{NameJa: "安藤忠雄", Slug: "tadao-ando"}},
			}, 0.5)},
			Total: 1, Limit: limit, Offset: offset,
			Path: strategy.PathFallback, Partial: true,
		}
	}}, nil)

	resp, err := c.SearchBuildings(context.Background(), "大阪", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Partial || resp.Path != "fallback" || resp.Total != 1 {
		t.Errorf("resp = %+v", resp)
	}
	got := resp.Results[0]
	if got.Score != 0.5 || len(got.Building.BuildingTypes) != 2 || got.Building.Architects[0].Slug != "tadao-ando" {
		t.Errorf("result = %+v", got)
	}
}

func TestBuilding_WrapsError(t *testing.T) {
	c := testClient(nil, &mockCatalogUC{
		buildingFn: func(_ context.Context, slug string) (dombuilding.Building, error) {
			return dombuilding.Building{}, fmt.Errorf("lookup %s: %w", slug, domain.ErrNotFound)
		},
	})
	_, err := c.Building(context.Background(), "x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestHealth_Conversion(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckOK, "cache": healthuc.CheckError},
	}}}
	h := c.Health(context.Background())
	if h.Status != HealthDegraded || h.Checks["cache"] != "error" {
		t.Errorf("health = %+v", h)
	}
	if !h.Serving() {
		t.Error("degraded client still serves")
	}
	if f := h.Failing(); len(f) != 1 || f[0] != "cache" {
		t.Errorf("Failing() = %v", f)
	}
}

// --- Observer ---

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}

	obs.observe("building", time.Now(), nil)
	obs.observe("building", time.Now(), errors.New("boom"))
	obs.observeSearch(time.Now(), &SearchResponse{Partial: true})

	ops := obs.metrics.operations
	if v := testutil.ToFloat64(ops.WithLabelValues("building", "ok")); v != 1 {
		t.Errorf("building ok = %v", v)
	}
	if v := testutil.ToFloat64(ops.WithLabelValues("building", "error")); v != 1 {
		t.Errorf("building error = %v", v)
	}
	if v := testutil.ToFloat64(ops.WithLabelValues("search", "partial")); v != 1 {
		t.Errorf("search partial = %v", v)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the registered collector to be reused")
	}
}

func TestObserver_Nil(t *testing.T) {
	var obs *observer
	obs.observe("ping", time.Now(), nil)
	obs.observeSearch(time.Now(), &SearchResponse{})
}
