package architect

// Credit is the display projection of an individual architect on a building.
type Credit struct {
	NameJa string
	NameEn string
	Slug   string
}

// Composition links a group architect (the credited name on a building)
// to one of its individual members. OrderIndex fixes the display order.
type Composition struct {
	GroupID      int64
	IndividualID int64
	OrderIndex   int
}

// BuildingRef is the short building projection shown on an architect page.
type BuildingRef struct {
	ID              int64
	Slug            string
	Title           string
	TitleEn         string
	CompletionYears string
	Location        string
}

// Architect is an individual architect.
type Architect struct {
	ID        int64
	Slug      string
	NameJa    string
	NameEn    string
	BirthYear *int
	DeathYear *int
	Biography string
	Awards    string
	Buildings []BuildingRef
}

// Credit returns the display projection.
func (a Architect) Credit() Credit {
	return Credit{NameJa: a.NameJa, NameEn: a.NameEn, Slug: a.Slug}
}

// DisplayName prefers the Japanese name.
func (a Architect) DisplayName() string {
	if a.NameJa != "" {
		return a.NameJa
	}
	return a.NameEn
}
