package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pocketnavi/pocketnavi/internal/domain"
	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
)

// --- Mocks ---

type mockBuildings struct {
	bySlug  map[string]dombuilding.Building
	all     []dombuilding.Building
	listErr error
	gotIDs  []int64
}

func (m *mockBuildings) GetBySlug(_ context.Context, slug string) (dombuilding.Building, error) {
	b, ok := m.bySlug[slug]
	if !ok {
		return dombuilding.Building{}, fmt.Errorf("building %s: %w", slug, domain.ErrNotFound)
	}
	return b, nil
}

func (m *mockBuildings) ListByIDs(_ context.Context, ids []int64) ([]dombuilding.Building, error) {
	m.gotIDs = ids
	if m.listErr != nil {
		return nil, m.listErr
	}
	want := make(map[int64]bool)
	for _, id := range ids {
		want[id] = true
	}
	var out []dombuilding.Building
	for _, b := range m.all {
		if want[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockArchitects struct {
	bySlug    map[string]domarch.Architect
	groups    map[int64][]int64
	buildings map[int64][]int64
	groupsErr error
}

func (m *mockArchitects) GetBySlug(_ context.Context, slug string) (domarch.Architect, error) {
	a, ok := m.bySlug[slug]
	if !ok {
		return domarch.Architect{}, fmt.Errorf("architect %s: %w", slug, domain.ErrNotFound)
	}
	return a, nil
}

func (m *mockArchitects) GroupsOf(_ context.Context, id int64) ([]int64, error) {
	if m.groupsErr != nil {
		return nil, m.groupsErr
	}
	return m.groups[id], nil
}

func (m *mockArchitects) BuildingIDs(_ context.Context, groupIDs []int64) ([]int64, error) {
	var out []int64
	for _, g := range groupIDs {
		out = append(out, m.buildings[g]...)
	}
	return out, nil
}

type mockResolver struct {
	credits map[int64][]domarch.Credit
}

func (m *mockResolver) Architects(_ context.Context, id int64) []domarch.Credit {
	if c, ok := m.credits[id]; ok {
		return c
	}
	return []domarch.Credit{}
}

type countingLookup struct {
	calls int
	next  Lookup[dombuilding.Building]
}

func (c *countingLookup) GetBySlug(ctx context.Context, slug string) (dombuilding.Building, error) {
	c.calls++
	return c.next.GetBySlug(ctx, slug)
}

func newTestService() (*Service, *mockBuildings, *mockArchitects) {
	light := dombuilding.Building{ID: 1, Slug: "church-of-the-light", Title: "光の教会", CompletionYears: "1989"}
	water := dombuilding.Building{ID: 2, Slug: "church-on-the-water", Title: "水の教会", CompletionYears: "1988"}
	museum := dombuilding.Building{ID: 3, Slug: "21st-century-museum-kanazawa", Title: "金沢21世紀美術館", CompletionYears: "2004"}

	bs := &mockBuildings{
		bySlug: map[string]dombuilding.Building{light.Slug: light, museum.Slug: museum},
		// ListByIDs order: newest first
		all: []dombuilding.Building{museum, light, water},
	}
	as := &mockArchitects{
		bySlug: map[string]domarch.Architect{
			"tadao-ando":    {ID: 1, Slug: "tadao-ando", NameJa: "安藤忠雄"},
			"kazuyo-sejima": {ID: 2, Slug: "kazuyo-sejima", NameJa: "妹島和世"},
			"nobody":        {ID: 9, Slug: "nobody"},
		},
		groups: map[int64][]int64{1: {101, 103}, 2: {102}},
		buildings: map[int64][]int64{
			101: {1, 2},
			102: {3},
			103: {1},
		},
	}
	res := &mockResolver{credits: map[int64][]domarch.Credit{
		3: {{Slug: "kazuyo-sejima"}, {Slug: "ryue-nishizawa"}},
	}}
	return New(bs, as, res), bs, as
}

// --- Tests ---

func TestGetBuilding(t *testing.T) {
	svc, _, _ := newTestService()

	b, err := svc.GetBuilding(context.Background(), "21st-century-museum-kanazawa")
	if err != nil {
		t.Fatalf("GetBuilding: %v", err)
	}
	if b.ID != 3 || len(b.Architects) != 2 || b.Architects[0].Slug != "kazuyo-sejima" {
		t.Errorf("building = %+v", b)
	}
}

func TestGetBuilding_Errors(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		slug string
		want error
	}{
		{"", domain.ErrInvalidQuery},
		{"../etc/passwd", domain.ErrInvalidQuery},
		{"missing", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			_, err := svc.GetBuilding(context.Background(), tt.slug)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGetArchitect(t *testing.T) {
	svc, bs, _ := newTestService()

	a, err := svc.GetArchitect(context.Background(), "tadao-ando")
	if err != nil {
		t.Fatalf("GetArchitect: %v", err)
	}
	if len(bs.gotIDs) != 2 {
		t.Errorf("building ids must be deduplicated, got %v", bs.gotIDs)
	}
	if len(a.Buildings) != 2 || a.Buildings[0].ID != 1 || a.Buildings[1].ID != 2 {
		t.Errorf("buildings = %+v", a.Buildings)
	}
	if a.Buildings[0].Title != "光の教会" || a.Buildings[0].CompletionYears != "1989" {
		t.Errorf("ref = %+v", a.Buildings[0])
	}
}

func TestGetArchitect_NoGroups(t *testing.T) {
	svc, _, _ := newTestService()

	a, err := svc.GetArchitect(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetArchitect: %v", err)
	}
	if a.Buildings == nil || len(a.Buildings) != 0 {
		t.Errorf("buildings = %v, want empty", a.Buildings)
	}
}

func TestGetArchitect_Errors(t *testing.T) {
	svc, _, as := newTestService()

	if _, err := svc.GetArchitect(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	as.groupsErr = fmt.Errorf("groups: %w", domain.ErrTransport)
	if _, err := svc.GetArchitect(context.Background(), "tadao-ando"); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestWithLookups(t *testing.T) {
	svc, _, _ := newTestService()
	counting := &countingLookup{next: LookupFunc[dombuilding.Building](svc.LoadBuilding)}
	svc.WithLookups(counting, nil)

	if _, err := svc.GetBuilding(context.Background(), "church-of-the-light"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetBuilding(context.Background(), "bad slug"); err == nil {
		t.Fatal("expected validation error")
	}
	if counting.calls != 1 {
		t.Errorf("lookup calls = %d, invalid slugs must not reach it", counting.calls)
	}
	if _, err := svc.GetArchitect(context.Background(), "tadao-ando"); err != nil {
		t.Errorf("nil architect lookup must keep the default: %v", err)
	}
}
