package building

import (
	"strconv"
	"strings"

	"github.com/pocketnavi/pocketnavi/internal/domain/architect"
)

// Field names of the searchable projection. Order is fixed: the fallback
// controller and the AND check both walk fields in this order.
const (
	FieldTitle           = "title"
	FieldTitleEn         = "titleEn"
	FieldBuildingTypes   = "buildingTypes"
	FieldBuildingTypesEn = "buildingTypesEn"
	FieldLocation        = "location"
	FieldLocationEn      = "locationEn"
)

// SearchableFields lists the six fields searched by every matcher.
var SearchableFields = []string{
	FieldTitle,
	FieldTitleEn,
	FieldBuildingTypes,
	FieldBuildingTypesEn,
	FieldLocation,
	FieldLocationEn,
}

// Building is a catalog entry for one architectural work.
// Read-only to search; populated by the content pipeline.
type Building struct {
	ID              int64
	Slug            string
	Title           string
	TitleEn         string
	BuildingTypes   string // comma-joined
	BuildingTypesEn string // comma-joined
	Location        string
	LocationEn      string
	CompletionYears string
	Lat             *float64
	Lng             *float64
	Description     string
	History         string
	TechnicalInfo   string
	Architects      []architect.Credit
}

// Field returns the value of a searchable field by name.
func (b *Building) Field(name string) (string, bool) {
	switch name {
	case FieldTitle:
		return b.Title, true
	case FieldTitleEn:
		return b.TitleEn, true
	case FieldBuildingTypes:
		return b.BuildingTypes, true
	case FieldBuildingTypesEn:
		return b.BuildingTypesEn, true
	case FieldLocation:
		return b.Location, true
	case FieldLocationEn:
		return b.LocationEn, true
	default:
		return "", false
	}
}

// SearchableText returns the searchable field values in SearchableFields order.
func (b *Building) SearchableText() []string {
	out := make([]string, len(SearchableFields))
	for i, f := range SearchableFields {
		out[i], _ = b.Field(f)
	}
	return out
}

// Types splits the comma-joined category tags.
func (b *Building) Types() []string { return splitTags(b.BuildingTypes) }

// TypesEn splits the comma-joined localized category tags.
func (b *Building) TypesEn() []string { return splitTags(b.BuildingTypesEn) }

// HasLocation reports whether both coordinates are known.
func (b *Building) HasLocation() bool { return b.Lat != nil && b.Lng != nil }

// MapURL links the coordinates on Google Maps. Empty without a location.
func (b *Building) MapURL() string {
	if !b.HasLocation() {
		return ""
	}
	return "https://www.google.com/maps?q=" +
		strconv.FormatFloat(*b.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(*b.Lng, 'f', -1, 64)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
