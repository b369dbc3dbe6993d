package chi

import (
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/page"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
)

// ErrorResponseCode is the machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest    ErrorResponseCode = "bad_request"
	ErrorResponseCodeNotFound      ErrorResponseCode = "not_found"
	ErrorResponseCodeInternalError ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// Credit is one architect entry of a building.
type Credit struct {
	NameJa string `json:"name_ja"`
	NameEn string `json:"name_en"`
	Slug   string `json:"slug"`
}

// BuildingItem is the search projection of a building.
type BuildingItem struct {
	BuildingID      int64    `json:"building_id"`
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	TitleEn         string   `json:"titleEn"`
	BuildingTypes   string   `json:"buildingTypes"`
	BuildingTypesEn string   `json:"buildingTypesEn"`
	Location        string   `json:"location"`
	LocationEn      string   `json:"locationEn"`
	CompletionYears string   `json:"completionYears"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Architects      []Credit `json:"architects"`
	Rank            *float64 `json:"rank,omitempty"`
}

// BuildingDetail is a building page.
type BuildingDetail struct {
	BuildingItem
	Types         []string `json:"types"`
	TypesEn       []string `json:"typesEn"`
	Description   string   `json:"description,omitempty"`
	History       string   `json:"history,omitempty"`
	TechnicalInfo string   `json:"technicalInfo,omitempty"`
	MapURL        string   `json:"mapUrl,omitempty"`
}

// BuildingRef is one building on an architect page.
type BuildingRef struct {
	BuildingID      int64  `json:"building_id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	TitleEn         string `json:"titleEn"`
	CompletionYears string `json:"completionYears"`
	Location        string `json:"location"`
}

// ArchitectDetail is an architect page.
type ArchitectDetail struct {
	ID        int64         `json:"individual_architect_id"`
	Slug      string        `json:"slug"`
	NameJa    string        `json:"name_ja"`
	NameEn    string        `json:"name_en"`
	BirthYear *int          `json:"birth_year,omitempty"`
	DeathYear *int          `json:"death_year,omitempty"`
	Biography string        `json:"biography,omitempty"`
	Awards    string        `json:"awards,omitempty"`
	Buildings []BuildingRef `json:"buildings"`
}

// Pagination describes the page of a search response.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	Limit        int  `json:"limit"`
	Partial      bool `json:"partial,omitempty"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query      string         `json:"query"`
	Results    []BuildingItem `json:"results"`
	Pagination Pagination     `json:"pagination"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func creditsToDTO(cs []domarch.Credit) []Credit {
	out := make([]Credit, len(cs))
	for i, c := range cs {
		out[i] = Credit{NameJa: c.NameJa, NameEn: c.NameEn, Slug: c.Slug}
	}
	return out
}

func buildingToItem(b *dombuilding.Building) BuildingItem {
	return BuildingItem{
		BuildingID:      b.ID,
		Slug:            b.Slug,
		Title:           b.Title,
		TitleEn:         b.TitleEn,
		BuildingTypes:   b.BuildingTypes,
		BuildingTypesEn: b.BuildingTypesEn,
		Location:        b.Location,
		LocationEn:      b.LocationEn,
		CompletionYears: b.CompletionYears,
		Lat:             b.Lat,
		Lng:             b.Lng,
		Architects:      creditsToDTO(b.Architects),
	}
}

func resultToItem(r *result.Result) BuildingItem {
	b := r.Building()
	item := buildingToItem(&b)
	score := r.Score()
	item.Rank = &score
	return item
}

func buildingToDetail(b *dombuilding.Building) BuildingDetail {
	types, typesEn := b.Types(), b.TypesEn()
	if types == nil {
		types = []string{}
	}
	if typesEn == nil {
		typesEn = []string{}
	}
	return BuildingDetail{
		BuildingItem:  buildingToItem(b),
		Types:         types,
		TypesEn:       typesEn,
		Description:   b.Description,
		History:       b.History,
		TechnicalInfo: b.TechnicalInfo,
		MapURL:        b.MapURL(),
	}
}

func architectToDetail(a *domarch.Architect) ArchitectDetail {
	refs := make([]BuildingRef, len(a.Buildings))
	for i, b := range a.Buildings {
		refs[i] = BuildingRef{
			BuildingID:      b.ID,
			Slug:            b.Slug,
			Title:           b.Title,
			TitleEn:         b.TitleEn,
			CompletionYears: b.CompletionYears,
			Location:        b.Location,
		}
	}
	return ArchitectDetail{
		ID:        a.ID,
		Slug:      a.Slug,
		NameJa:    a.NameJa,
		NameEn:    a.NameEn,
		BirthYear: a.BirthYear,
		DeathYear: a.DeathYear,
		Biography: a.Biography,
		Awards:    a.Awards,
		Buildings: refs,
	}
}

func searchToDTO(raw string, resp *result.Response, p page.Page) SearchResponse {
	items := make([]BuildingItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = resultToItem(&resp.Results[i])
	}
	return SearchResponse{
		Query:   raw,
		Results: items,
		Pagination: Pagination{
			CurrentPage:  p.Number(),
			TotalPages:   p.TotalPages(resp.Total),
			TotalResults: resp.Total,
			Limit:        p.Size(),
			Partial:      resp.Partial,
		},
	}
}
