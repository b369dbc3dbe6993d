// Package catalog serves the building and architect detail pages.
package catalog

import (
	"context"
	"fmt"

	"github.com/pocketnavi/pocketnavi/internal/domain"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
)

// Service answers slug lookups of buildings and architects.
type Service struct {
	buildings  BuildingReader
	architects ArchitectReader
	resolver   CreditResolver

	buildingLookup  Lookup[dombuilding.Building]
	architectLookup Lookup[domarch.Architect]
}

// New creates a catalog service without caching.
func New(buildings BuildingReader, architects ArchitectReader, resolver CreditResolver) *Service {
	s := &Service{buildings: buildings, architects: architects, resolver: resolver}
	s.buildingLookup = LookupFunc[dombuilding.Building](s.LoadBuilding)
	s.architectLookup = LookupFunc[domarch.Architect](s.LoadArchitect)
	return s
}

// WithLookups routes slug reads through the given lookups, typically
// caches wrapping LoadBuilding and LoadArchitect. Nil keeps the default.
func (s *Service) WithLookups(b Lookup[dombuilding.Building], a Lookup[domarch.Architect]) *Service {
	if b != nil {
		s.buildingLookup = b
	}
	if a != nil {
		s.architectLookup = a
	}
	return s
}

// LookupFunc adapts a function to Lookup.
type LookupFunc[T any] func(ctx context.Context, slug string) (T, error)

// GetBySlug implements Lookup.
func (f LookupFunc[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	return f(ctx, slug)
}

// GetBuilding returns a building with its architects.
func (s *Service) GetBuilding(ctx context.Context, slug string) (dombuilding.Building, error) {
	if err := domain.ValidateSlug(slug); err != nil {
		return dombuilding.Building{}, err
	}
	return s.buildingLookup.GetBySlug(ctx, slug)
}

// GetArchitect returns an architect with the buildings credited to any
// group they belong to, newest first.
func (s *Service) GetArchitect(ctx context.Context, slug string) (domarch.Architect, error) {
	if err := domain.ValidateSlug(slug); err != nil {
		return domarch.Architect{}, err
	}
	return s.architectLookup.GetBySlug(ctx, slug)
}

// LoadBuilding reads a building and resolves its architects, bypassing
// any cache.
func (s *Service) LoadBuilding(ctx context.Context, slug string) (dombuilding.Building, error) {
	b, err := s.buildings.GetBySlug(ctx, slug)
	if err != nil {
		return dombuilding.Building{}, fmt.Errorf("get building: %w", err)
	}
	b.Architects = s.resolver.Architects(ctx, b.ID)
	return b, nil
}

// LoadArchitect reads an architect and their buildings, bypassing any cache.
func (s *Service) LoadArchitect(ctx context.Context, slug string) (domarch.Architect, error) {
	a, err := s.architects.GetBySlug(ctx, slug)
	if err != nil {
		return domarch.Architect{}, fmt.Errorf("get architect: %w", err)
	}

	groups, err := s.architects.GroupsOf(ctx, a.ID)
	if err != nil {
		return domarch.Architect{}, fmt.Errorf("architect groups: %w", err)
	}
	ids, err := s.architects.BuildingIDs(ctx, groups)
	if err != nil {
		return domarch.Architect{}, fmt.Errorf("architect buildings: %w", err)
	}
	list, err := s.buildings.ListByIDs(ctx, dedupIDs(ids))
	if err != nil {
		return domarch.Architect{}, fmt.Errorf("list buildings: %w", err)
	}

	a.Buildings = make([]domarch.BuildingRef, 0, len(list))
	for _, b := range list {
		a.Buildings = append(a.Buildings, domarch.BuildingRef{
			ID:              b.ID,
			Slug:            b.Slug,
			Title:           b.Title,
			TitleEn:         b.TitleEn,
			CompletionYears: b.CompletionYears,
			Location:        b.Location,
		})
	}
	return a, nil
}

func dedupIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
