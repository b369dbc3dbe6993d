package relation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
)

// --- Mocks ---

type mockRepo struct {
	mu           sync.Mutex
	groups       map[int64][]int64
	compositions []domarch.Composition
	individuals  []domarch.Architect
	groupErr     error
	compErr      error
	indivErr     error
	indivCalls   int
}

func (m *mockRepo) GroupIDs(_ context.Context, buildingID int64) ([]int64, error) {
	if m.groupErr != nil {
		return nil, m.groupErr
	}
	return m.groups[buildingID], nil
}

func (m *mockRepo) Compositions(_ context.Context, groupIDs []int64) ([]domarch.Composition, error) {
	if m.compErr != nil {
		return nil, m.compErr
	}
	want := make(map[int64]bool, len(groupIDs))
	for _, g := range groupIDs {
		want[g] = true
	}
	var out []domarch.Composition
	for _, c := range m.compositions {
		if want[c.GroupID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) Individuals(_ context.Context, ids []int64) ([]domarch.Architect, error) {
	m.mu.Lock()
	m.indivCalls++
	m.mu.Unlock()
	if m.indivErr != nil {
		return nil, m.indivErr
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	// store order, deliberately not composition order
	var out []domarch.Architect
	for _, a := range m.individuals {
		if want[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func catalogRepo() *mockRepo {
	return &mockRepo{
		groups: map[int64][]int64{
			1: {101},
			3: {102},
			4: {},
			7: {103},
		},
		compositions: []domarch.Composition{
			{GroupID: 101, IndividualID: 1, OrderIndex: 1},
			{GroupID: 102, IndividualID: 3, OrderIndex: 2},
			{GroupID: 102, IndividualID: 2, OrderIndex: 1},
			{GroupID: 103, IndividualID: 1, OrderIndex: 1},
			{GroupID: 103, IndividualID: 1, OrderIndex: 2},
		},
		individuals: []domarch.Architect{
			{ID: 1, Slug: "tadao-ando", NameJa: "安藤忠雄", NameEn: "Tadao Ando"},
			{ID: 2, Slug: "kazuyo-sejima", NameJa: "妹島和世", NameEn: "Kazuyo Sejima"},
			{ID: 3, Slug: "ryue-nishizawa", NameJa: "西沢立衛", NameEn: "Ryue Nishizawa"},
		},
	}
}

func newResolver(t *testing.T, repo Repository) *Resolver {
	t.Helper()
	r, err := New(repo, 4, time.Second, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Release)
	return r
}

func slugs(credits []domarch.Credit) []string {
	out := make([]string, len(credits))
	for i, c := range credits {
		out[i] = c.Slug
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Tests ---

func TestArchitects(t *testing.T) {
	r := newResolver(t, catalogRepo())

	tests := []struct {
		name       string
		buildingID int64
		want       []string
	}{
		{"single member", 1, []string{"tadao-ando"}},
		{"two-person group in order_index order", 3, []string{"kazuyo-sejima", "ryue-nishizawa"}},
		{"no groups", 4, []string{}},
		{"unknown building", 99, []string{}},
		{"duplicate member dropped", 7, []string{"tadao-ando"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Architects(context.Background(), tt.buildingID)
			if got == nil {
				t.Fatal("credits must never be nil")
			}
			if !equal(slugs(got), tt.want) {
				t.Errorf("Architects(%d) = %v, want %v", tt.buildingID, slugs(got), tt.want)
			}
		})
	}
}

func TestArchitects_CarriesDisplayNames(t *testing.T) {
	r := newResolver(t, catalogRepo())
	got := r.Architects(context.Background(), 1)
	want := domarch.Credit{NameJa: "安藤忠雄", NameEn: "Tadao Ando", Slug: "tadao-ando"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("Architects(1) = %+v", got)
	}
}

func TestArchitects_ErrorsYieldEmpty(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		mut  func(*mockRepo)
	}{
		{"groups", func(m *mockRepo) { m.groupErr = boom }},
		{"compositions", func(m *mockRepo) { m.compErr = boom }},
		{"individuals", func(m *mockRepo) { m.indivErr = boom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := catalogRepo()
			tt.mut(repo)
			r := newResolver(t, repo)
			got := r.Architects(context.Background(), 3)
			if got == nil || len(got) != 0 {
				t.Errorf("Architects() = %v, want empty", got)
			}
		})
	}
}

func TestArchitects_EmptyCompositionsSkipIndividuals(t *testing.T) {
	repo := catalogRepo()
	repo.groups[5] = []int64{999}
	r := newResolver(t, repo)

	if got := r.Architects(context.Background(), 5); len(got) != 0 {
		t.Errorf("Architects() = %v", got)
	}
	if repo.indivCalls != 0 {
		t.Errorf("individuals called %d times", repo.indivCalls)
	}
}

func TestEnrich(t *testing.T) {
	r := newResolver(t, catalogRepo())
	page := []dombuilding.Building{{ID: 3}, {ID: 1}, {ID: 4}}

	r.Enrich(context.Background(), page)

	want := [][]string{
		{"kazuyo-sejima", "ryue-nishizawa"},
		{"tadao-ando"},
		{},
	}
	for i, b := range page {
		if !equal(slugs(b.Architects), want[i]) {
			t.Errorf("page[%d] architects = %v, want %v", i, slugs(b.Architects), want[i])
		}
	}
}

func TestEnrich_AfterReleaseRunsInline(t *testing.T) {
	r, err := New(catalogRepo(), 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Release()

	page := []dombuilding.Building{{ID: 1}}
	r.Enrich(context.Background(), page)
	if !equal(slugs(page[0].Architects), []string{"tadao-ando"}) {
		t.Errorf("architects = %v", slugs(page[0].Architects))
	}
}
