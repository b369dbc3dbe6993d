package lru

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pocketnavi/pocketnavi/internal/db"
)

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestGetSet(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("Get on empty store: %v", err)
	}

	val := []byte("v1")
	if err := s.SetWithTTL(ctx, "k", val, 0); err != nil {
		t.Fatal(err)
	}
	val[0] = 'x'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %s, want v1 (stored value must be a copy)", got)
	}
}

func TestExpiry(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "k", []byte("v"), time.Minute)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("fresh key: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expired key: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired key not evicted, len = %d", s.Len())
	}
}

func TestEviction(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_ = s.SetWithTTL(ctx, "a", []byte("1"), 0)
	_ = s.SetWithTTL(ctx, "b", []byte("2"), 0)
	_, _ = s.Get(ctx, "a") // a is now most recent
	_ = s.SetWithTTL(ctx, "c", []byte("3"), 0)

	if _, err := s.Get(ctx, "b"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Error("least recently used key should be evicted")
	}
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Errorf("a evicted: %v", err)
	}
}
