package building

import (
	"github.com/pocketnavi/pocketnavi/internal/db"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
)

// Column maps a searchable field name to its store column.
func Column(field string) string {
	switch field {
	case dombuilding.FieldLocationEn:
		return db.ColLocationEn
	default:
		return field
	}
}

// parseRow converts a store row into a domain Building. Columns missing
// from the projection stay empty.
func parseRow(row db.Row) (dombuilding.Building, bool) {
	id, ok := row.Int64(db.ColBuildingID)
	if !ok {
		return dombuilding.Building{}, false
	}
	return dombuilding.Building{
		ID:              id,
		Slug:            row.String(db.ColSlug),
		Title:           row.String(db.ColTitle),
		TitleEn:         row.String(db.ColTitleEn),
		BuildingTypes:   row.String(db.ColBuildingTypes),
		BuildingTypesEn: row.String(db.ColBuildingTypesEn),
		Location:        row.String(db.ColLocation),
		LocationEn:      row.String(db.ColLocationEn),
		CompletionYears: row.String(db.ColCompletionYears),
		Lat:             row.Float(db.ColLat),
		Lng:             row.Float(db.ColLng),
		Description:     row.String(db.ColDescription),
		History:         row.String(db.ColHistory),
		TechnicalInfo:   row.String(db.ColTechnicalInfo),
	}, true
}

// parseRows skips rows without an id.
func parseRows(rows []db.Row) []dombuilding.Building {
	out := make([]dombuilding.Building, 0, len(rows))
	for _, row := range rows {
		if b, ok := parseRow(row); ok {
			out = append(out, b)
		}
	}
	return out
}
