package architect

import (
	"github.com/pocketnavi/pocketnavi/internal/db"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
)

func parseIndividual(row db.Row) (domarch.Architect, bool) {
	id, ok := row.Int64(db.ColIndividualID)
	if !ok {
		return domarch.Architect{}, false
	}
	return domarch.Architect{
		ID:        id,
		Slug:      row.String(db.ColSlug),
		NameJa:    row.String(db.ColNameJa),
		NameEn:    row.String(db.ColNameEn),
		BirthYear: row.IntPtr(db.ColBirthYear),
		DeathYear: row.IntPtr(db.ColDeathYear),
		Biography: row.String(db.ColBiography),
		Awards:    row.String(db.ColAwards),
	}, true
}

func parseComposition(row db.Row) (domarch.Composition, bool) {
	group, ok := row.Int64(db.ColArchitectID)
	if !ok {
		return domarch.Composition{}, false
	}
	member, ok := row.Int64(db.ColIndividualID)
	if !ok {
		return domarch.Composition{}, false
	}
	order, _ := row.Int64(db.ColOrderIndex)
	return domarch.Composition{GroupID: group, IndividualID: member, OrderIndex: int(order)}, true
}

// column collects one integer column, skipping rows without it.
func column(rows []db.Row, col string) []int64 {
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		if id, ok := row.Int64(col); ok {
			out = append(out, id)
		}
	}
	return out
}
