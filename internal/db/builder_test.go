package db

import (
	"errors"
	"testing"

	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
)

func TestQueryBuilder_Simple(t *testing.T) {
	p, _ := predicate.Eq(ColSlug, "church-of-the-light")
	q := From(TableBuildings).
		Select(ColBuildingID, ColSlug).
		Where(p).
		OrderBy(ColCompletionYears, true).
		Limit(10).
		Offset(20).
		MustBuild()

	if q.Table != TableBuildings {
		t.Errorf("table = %q", q.Table)
	}
	if len(q.Fields) != 2 || q.Fields[1] != ColSlug {
		t.Errorf("fields = %v", q.Fields)
	}
	if q.Filter.Op() != predicate.OpEq {
		t.Errorf("filter op = %s", q.Filter.Op())
	}
	if len(q.Order) != 1 || !q.Order[0].Desc {
		t.Errorf("order = %+v", q.Order)
	}
	if q.Limit != 10 || q.Offset != 20 {
		t.Errorf("limit/offset = %d/%d", q.Limit, q.Offset)
	}
}

func TestQueryBuilder_RejectsUnsafeIdentifiers(t *testing.T) {
	bad, _ := predicate.Contains(`title" OR 1=1 --`, "x")
	tests := []struct {
		name string
		b    *QueryBuilder
	}{
		{"table", From("buildings; DROP TABLE x")},
		{"field", From(TableBuildings).Select("title,slug")},
		{"filter", From(TableBuildings).Where(bad)},
		{"order", From(TableBuildings).OrderBy("rank desc", false)},
		{"negative limit", From(TableBuildings).Limit(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("Build() err = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestQueryBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	From("").MustBuild()
}

func TestBuildingDetail_ExtendsProjection(t *testing.T) {
	if len(BuildingDetail) != len(BuildingProjection)+3 {
		t.Fatalf("BuildingDetail = %v", BuildingDetail)
	}
	if len(BuildingProjection) != 11 {
		t.Errorf("BuildingProjection has %d columns", len(BuildingProjection))
	}
}
