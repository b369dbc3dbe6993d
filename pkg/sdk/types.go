package pocketnavi

// Strategy selects how multi-term queries are intersected.
type Strategy string

// Strategy constants.
const (
	// StrictAnd filters a window of first-term matches by the other terms.
	StrictAnd Strategy = "strict_and"
	// FastAnd matches every term and keeps candidates satisfying all of them.
	FastAnd Strategy = "fast_and"
)

// Credit is an architect credited on a building.
type Credit struct {
	NameJa string
	NameEn string
	Slug   string
}

// Building is a catalog entry.
type Building struct {
	ID              int64
	Slug            string
	Title           string
	TitleEn         string
	BuildingTypes   []string
	BuildingTypesEn []string
	Location        string
	LocationEn      string
	CompletionYears string
	Lat             *float64
	Lng             *float64
	Description     string
	Architects      []Credit
}

// SearchResult is a single search hit.
type SearchResult struct {
	Building Building
	Score    float64
}

// SearchResponse is one window of search results.
type SearchResponse struct {
	Results []SearchResult
	Total   int
	// Path names the search path that answered ("single", "and", "fallback", ...).
	Path string
	// Partial is set when a time budget cut the search short.
	Partial bool
}

// Page is a 1-indexed page of search results.
type Page struct {
	SearchResponse
	Number     int
	Size       int
	TotalPages int
}

// BuildingRef is a building listed on an architect page.
type BuildingRef struct {
	ID              int64
	Slug            string
	Title           string
	TitleEn         string
	CompletionYears string
	Location        string
}

// Architect is an individual architect with their works.
type Architect struct {
	ID        int64
	Slug      string
	NameJa    string
	NameEn    string
	BirthYear *int
	DeathYear *int
	Biography string
	Buildings []BuildingRef
}
