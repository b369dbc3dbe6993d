package db

import "errors"

// Sentinel errors for store operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrBadStatus is a non-success response from an HTTP store.
	ErrBadStatus = errors.New("db: unexpected response status")
	// ErrMalformed is a payload that could not be decoded.
	ErrMalformed = errors.New("db: malformed response")
	// ErrUnavailable is a store refusing calls (circuit open, closed client).
	ErrUnavailable = errors.New("db: store unavailable")
	// ErrUnsupported is a capability the backend does not provide.
	ErrUnsupported = errors.New("db: operation not supported")
	// ErrInvalidQuery is a query the backend cannot express safely.
	ErrInvalidQuery = errors.New("db: invalid query")
)

// Op names used for error context and store metrics.
const (
	OpPing         = "PING"
	OpQuery        = "QUERY"
	OpSearchRanked = "SEARCH_RANKED"
	OpCount        = "COUNT"
	OpImport       = "IMPORT"
	OpReindex      = "REINDEX"
	OpMigrate      = "MIGRATE"
	OpGet          = "GET"
	OpSet          = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
