package db

import (
	"context"
	"time"
)

// Store is the record store facade combining both search capabilities.
//
//nolint:interfacebloat // facade; consumers use the narrow sub-interfaces
type Store interface {
	Pinger
	RankedSearcher
	RecordQuerier
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RankedSearcher runs native full-text search with a relevance rank.
// Backends without it return false from SupportsRankedSearch and
// ErrUnsupported from SearchRanked.
type RankedSearcher interface {
	SupportsRankedSearch(ctx context.Context) bool
	SearchRanked(ctx context.Context, q *TextQuery) (*RankedResult, error)
}

// RecordQuerier runs filter queries over one table.
type RecordQuerier interface {
	Query(ctx context.Context, q *RecordQuery) ([]Row, error)
}

// KVStore provides the key-value operations behind the lookup cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
