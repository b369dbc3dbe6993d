package result

import (
	"testing"

	"github.com/pocketnavi/pocketnavi/internal/domain/building"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/strategy"
)

func TestNew_ClampsScore(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.42, 0.42},
		{ConstantScore, 1},
		{3, 1},
	}
	for _, tt := range tests {
		r := New(building.Building{ID: 1}, tt.in)
		if r.Score() != tt.want {
			t.Errorf("New(score=%v).Score() = %v, want %v", tt.in, r.Score(), tt.want)
		}
	}
}

func TestWithBuilding_KeepsScore(t *testing.T) {
	r := New(building.Building{ID: 1, Title: "a"}, 0.3)
	r2 := r.WithBuilding(building.Building{ID: 1, Title: "b"})
	if r2.Score() != 0.3 || r2.Building().Title != "b" {
		t.Errorf("WithBuilding() = %+v", r2)
	}
	if r.Building().Title != "a" {
		t.Error("WithBuilding must not mutate the receiver")
	}
}

func TestEmpty(t *testing.T) {
	resp := Empty(10, 0, strategy.PathEmpty)
	if resp.Results == nil || len(resp.Results) != 0 || resp.Total != 0 {
		t.Errorf("Empty() = %+v", resp)
	}
	if resp.HasMore() {
		t.Error("empty response has no more pages")
	}
}

func TestHasMore(t *testing.T) {
	resp := Response{Results: make([]Result, 10), Total: 25, Offset: 10, Limit: 10}
	if !resp.HasMore() {
		t.Error("expected more pages")
	}
	resp.Offset = 15
	if resp.HasMore() {
		t.Error("expected last page")
	}
}
