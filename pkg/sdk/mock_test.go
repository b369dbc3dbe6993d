package pocketnavi

import (
	"context"

	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
	healthuc "github.com/pocketnavi/pocketnavi/internal/usecase/health"
	searchuc "github.com/pocketnavi/pocketnavi/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, raw string, limit, offset int) result.Response
}

func (m *mockSearchUC) SearchBuildings(ctx context.Context, raw string, limit, offset int) result.Response {
	return m.searchFn(ctx, raw, limit, offset)
}

func (m *mockSearchUC) Config() searchuc.Config { return searchuc.DefaultConfig() }

// --- catalogUseCase mock ---

type mockCatalogUC struct {
	buildingFn  func(ctx context.Context, slug string) (dombuilding.Building, error)
	architectFn func(ctx context.Context, slug string) (domarch.Architect, error)
}

func (m *mockCatalogUC) GetBuilding(ctx context.Context, slug string) (dombuilding.Building, error) {
	return m.buildingFn(ctx, slug)
}

func (m *mockCatalogUC) GetArchitect(ctx context.Context, slug string) (domarch.Architect, error) {
	return m.architectFn(ctx, slug)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(search searchUseCase, catalog catalogUseCase) *Client {
	return &Client{searchSvc: search, catalog: catalog}
}
