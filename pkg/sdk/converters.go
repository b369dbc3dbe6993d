package pocketnavi

import (
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
)

func responseFromDomain(resp *result.Response) SearchResponse {
	out := SearchResponse{
		Results: make([]SearchResult, len(resp.Results)),
		Total:   resp.Total,
		Path:    string(resp.Path),
		Partial: resp.Partial,
	}
	for i := range resp.Results {
		b := resp.Results[i].Building()
		out.Results[i] = SearchResult{
			Building: buildingFromDomain(&b),
			Score:    resp.Results[i].Score(),
		}
	}
	return out
}

func buildingFromDomain(b *dombuilding.Building) Building {
	credits := make([]Credit, len(b.Architects))
	for i, c := range b.Architects {
		credits[i] = Credit{NameJa: c.NameJa, NameEn: c.NameEn, Slug: c.Slug}
	}
	return Building{
		ID:              b.ID,
		Slug:            b.Slug,
		Title:           b.Title,
		TitleEn:         b.TitleEn,
		BuildingTypes:   b.Types(),
		BuildingTypesEn: b.TypesEn(),
		Location:        b.Location,
		LocationEn:      b.LocationEn,
		CompletionYears: b.CompletionYears,
		Lat:             b.Lat,
		Lng:             b.Lng,
		Description:     b.Description,
		Architects:      credits,
	}
}

func architectFromDomain(a *domarch.Architect) Architect {
	refs := make([]BuildingRef, len(a.Buildings))
	for i, b := range a.Buildings {
		refs[i] = BuildingRef{
			ID:              b.ID,
			Slug:            b.Slug,
			Title:           b.Title,
			TitleEn:         b.TitleEn,
			CompletionYears: b.CompletionYears,
			Location:        b.Location,
		}
	}
	return Architect{
		ID:        a.ID,
		Slug:      a.Slug,
		NameJa:    a.NameJa,
		NameEn:    a.NameEn,
		BirthYear: a.BirthYear,
		DeathYear: a.DeathYear,
		Biography: a.Biography,
		Buildings: refs,
	}
}
