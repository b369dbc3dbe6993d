package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
)

func newTestStore(t *testing.T, h http.HandlerFunc, mutate ...func(*Config)) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &Config{URL: srv.URL, APIKey: "anon-key", HTTPClient: srv.Client()}
	for _, m := range mutate {
		m(cfg)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Error("expected error for empty url")
	}
	if _, err := New(&Config{URL: "ftp://example.com"}); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestQuery(t *testing.T) {
	var gotPath, gotOr, gotKey, gotAuth string
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOr = r.URL.Query().Get("or")
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"building_id": 1, "title": "光の教会", "lat": 34.8, "lng": null}]`))
	})

	p, _ := predicate.Contains("title", "教会")
	rows, err := s.Query(context.Background(), db.From(db.TableBuildings).Where(p).MustBuild())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if gotPath != "/rest/v1/buildings_table_2" {
		t.Errorf("path = %s", gotPath)
	}
	if gotOr != "" {
		t.Errorf("unexpected or param %q", gotOr)
	}
	if gotKey != "anon-key" || gotAuth != "Bearer anon-key" {
		t.Errorf("auth headers = %q, %q", gotKey, gotAuth)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	if id, ok := rows[0].Int64(db.ColBuildingID); !ok || id != 1 {
		t.Errorf("building_id = %v", rows[0][db.ColBuildingID])
	}
	if f := rows[0].Float(db.ColLat); f == nil || *f != 34.8 {
		t.Errorf("lat = %v", rows[0][db.ColLat])
	}
	if rows[0].Float(db.ColLng) != nil {
		t.Errorf("lng = %v, want nil", rows[0][db.ColLng])
	}
}

func TestQuery_BadStatus(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"statement timeout"}`, http.StatusInternalServerError)
	})

	_, err := s.Query(context.Background(), db.From(db.TableBuildings).MustBuild())
	if !errors.Is(err, db.ErrBadStatus) {
		t.Fatalf("err = %v, want ErrBadStatus", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpQuery {
		t.Errorf("err = %#v, want db.Error with op QUERY", err)
	}
}

func TestQuery_Malformed(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := s.Query(context.Background(), db.From(db.TableBuildings).MustBuild())
	if !errors.Is(err, db.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestQuery_Timeout(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`[]`))
	}, func(c *Config) { c.Timeout = 50 * time.Millisecond })

	_, err := s.Query(context.Background(), db.From(db.TableBuildings).MustBuild())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestBreaker_Opens(t *testing.T) {
	var calls atomic.Int32
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(c *Config) {
		c.MaxFailures = 2
		c.OpenTimeout = time.Minute
	})

	q := db.From(db.TableBuildings).MustBuild()
	for range 2 {
		if _, err := s.Query(context.Background(), q); !errors.Is(err, db.ErrBadStatus) {
			t.Fatalf("err = %v, want ErrBadStatus", err)
		}
	}

	_, err := s.Query(context.Background(), q)
	if !errors.Is(err, db.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2", calls.Load())
	}
}

func TestSearchRanked(t *testing.T) {
	var gotPrefer, gotPath string
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		gotPath = r.URL.Path
		w.Header().Set("Content-Range", "0-1/7")
		_, _ = w.Write([]byte(`[{"building_id": 1, "rank": 0.8}, {"building_id": 2, "rank": 1.7}]`))
	}, func(c *Config) { c.SearchRPC = "search_buildings" })

	if !s.SupportsRankedSearch(context.Background()) {
		t.Fatal("expected ranked search support")
	}
	res, err := s.SearchRanked(context.Background(), &db.TextQuery{
		Query: "教会",
		Terms: [][]string{{"教会"}},
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("SearchRanked: %v", err)
	}

	if gotPath != "/rest/v1/rpc/search_buildings" || gotPrefer != "count=exact" {
		t.Errorf("path = %s, prefer = %s", gotPath, gotPrefer)
	}
	if res.Total != 7 || len(res.Rows) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Rows[0].Rank != 0.8 || res.Rows[1].Rank != 1 {
		t.Errorf("ranks = %v, %v", res.Rows[0].Rank, res.Rows[1].Rank)
	}
	if _, ok := res.Rows[0].Row[db.ColRank]; ok {
		t.Error("rank column must be stripped from the row")
	}
}

func TestSearchRanked_Unsupported(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})
	if s.SupportsRankedSearch(context.Background()) {
		t.Error("ranked search must be off without an rpc")
	}
	if _, err := s.SearchRanked(context.Background(), &db.TextQuery{}); !errors.Is(err, db.ErrUnsupported) {
		t.Errorf("err = %v", err)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit = %s", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(`[]`))
	})
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
}
