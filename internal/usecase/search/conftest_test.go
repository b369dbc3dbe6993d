package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domarch "github.com/pocketnavi/pocketnavi/internal/domain/architect"
	dombuilding "github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/page"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/result"
)

// --- Mocks ---

type fakeRepo struct {
	mu        sync.Mutex
	buildings []dombuilding.Building

	// failCombined is returned for OR queries (the combined predicate).
	failCombined error
	// failLeaf is returned for single-field queries (fallback calls).
	failLeaf error
	// block makes every Match wait for its context.
	block bool

	ranked    bool
	rankedErr error
	rankedFn  func(query string, terms [][]string, limit, offset int) ([]result.Result, int)

	matchCalls  []predicate.Predicate
	rankedCalls int
}

func (f *fakeRepo) Match(
	ctx context.Context, p predicate.Predicate, limit, offset int,
) ([]dombuilding.Building, error) {
	f.mu.Lock()
	f.matchCalls = append(f.matchCalls, p)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.Op() == predicate.OpOr && f.failCombined != nil {
		return nil, f.failCombined
	}
	if p.IsLeaf() && f.failLeaf != nil {
		return nil, f.failLeaf
	}
	return f.filter(p, limit, offset), nil
}

func (f *fakeRepo) filter(p predicate.Predicate, limit, offset int) []dombuilding.Building {
	var out []dombuilding.Building
	for i := range f.buildings {
		if p.Matches(f.buildings[i].Field) {
			out = append(out, f.buildings[i])
		}
	}
	start, end := page.Window(len(out), offset, limit)
	return out[start:end]
}

func (f *fakeRepo) SupportsRankedSearch(context.Context) bool { return f.ranked }

func (f *fakeRepo) SearchRanked(
	_ context.Context, query string, terms [][]string, limit, offset int,
) ([]result.Result, int, error) {
	f.mu.Lock()
	f.rankedCalls++
	f.mu.Unlock()
	if f.rankedErr != nil {
		return nil, 0, f.rankedErr
	}
	hits, total := f.rankedFn(query, terms, limit, offset)
	return hits, total, nil
}

func (f *fakeRepo) leafCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.matchCalls {
		if p.IsLeaf() {
			n++
		}
	}
	return n
}

type fakeEnricher struct {
	credits map[int64][]domarch.Credit
}

func (f *fakeEnricher) Enrich(_ context.Context, buildings []dombuilding.Building) {
	for i := range buildings {
		c, ok := f.credits[buildings[i].ID]
		if !ok {
			c = []domarch.Credit{}
		}
		buildings[i].Architects = c
	}
}

// --- Fixtures ---

func catalog() []dombuilding.Building {
	return []dombuilding.Building{
		{ID: 1, Slug: "church-of-the-light", Title: "光の教会", TitleEn: "Church of the Light",
			BuildingTypes: "教会", BuildingTypesEn: "church", Location: "大阪府茨木市", LocationEn: "Ibaraki, Osaka"},
		{ID: 2, Slug: "church-on-the-water", Title: "水の教会", TitleEn: "Church on the Water",
			BuildingTypes: "教会", BuildingTypesEn: "church", Location: "北海道勇払郡占冠村", LocationEn: "Shimukappu, Hokkaido"},
		{ID: 3, Slug: "21st-century-museum-kanazawa", Title: "金沢21世紀美術館", TitleEn: "21st Century Museum of Contemporary Art, Kanazawa",
			BuildingTypes: "美術館", BuildingTypesEn: "museum", Location: "石川県金沢市", LocationEn: "Kanazawa, Ishikawa"},
		{ID: 4, Slug: "osaka-station-city", Title: "大阪ステーションシティ", TitleEn: "Osaka Station City",
			BuildingTypes: "駅,商業施設", BuildingTypesEn: "station,commercial", Location: "大阪府大阪市北区", LocationEn: "Kita-ku, Osaka"},
		{ID: 5, Slug: "sayamaike-museum", Title: "大阪府立狭山池博物館", TitleEn: "Sayamaike Historical Museum",
			BuildingTypes: "博物館", BuildingTypesEn: "museum", Location: "大阪府大阪狭山市", LocationEn: "Osakasayama, Osaka"},
		{ID: 6, Slug: "tomihiro-chapel", Title: "かざぐるまチャペル", TitleEn: "Kazaguruma Chapel",
			BuildingTypes: "チャペル", BuildingTypesEn: "chapel", Location: "兵庫県神戸市", LocationEn: "Kobe, Hyogo"},
		{ID: 7, Slug: "ando-house", Title: "安藤邸", TitleEn: "Ando House",
			BuildingTypes: "住宅", BuildingTypesEn: "house", Location: "東京都", LocationEn: "Tokyo"},
		{ID: 8, Slug: "ando-memorial-church", Title: "安藤記念教会", TitleEn: "Ando Memorial Church",
			BuildingTypes: "教会", BuildingTypesEn: "church", Location: "東京都港区", LocationEn: "Minato, Tokyo"},
	}
}

// numbered returns n buildings titled "教会 No.<i>".
func numbered(n int) []dombuilding.Building {
	out := make([]dombuilding.Building, n)
	for i := range out {
		out[i] = dombuilding.Building{
			ID:    int64(i + 1),
			Slug:  fmt.Sprintf("church-%d", i+1),
			Title: fmt.Sprintf("教会 No.%d", i+1),
		}
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PrimaryTimeout = time.Second
	cfg.FallbackCallTimeout = 200 * time.Millisecond
	cfg.Budget = time.Second
	return cfg
}

func newTestEngine(repo *fakeRepo, cfg Config) *Engine {
	return New(repo, nil, cfg, nil)
}

func ids(results []result.Result) []int64 {
	out := make([]int64, len(results))
	for i := range results {
		out[i] = results[i].ID()
	}
	return out
}

func sameIDs(a, b []int64) bool {
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

// matchesEveryTerm reconstructs the field text of b and checks every term.
func matchesEveryTerm(b dombuilding.Building, terms []string) bool {
	text := strings.ToLower(strings.Join(b.SearchableText(), "\x00"))
	for _, t := range terms {
		if !strings.Contains(text, strings.ToLower(t)) {
			return false
		}
	}
	return true
}
