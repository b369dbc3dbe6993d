package domain

import "errors"

var (
	// ErrNotFound signals a missing building or architect. Terminal: no fallback.
	ErrNotFound = errors.New("not found")
	// ErrTransport signals a failed store call (connection, status, circuit open).
	ErrTransport = errors.New("store transport error")
	// ErrTimeout signals that a store call or a search budget ran out.
	ErrTimeout = errors.New("store timeout")
	// ErrMalformedResponse signals an undecodable store payload.
	// Handled like ErrTransport.
	ErrMalformedResponse = errors.New("malformed store response")
	// ErrUnsupported signals a query the store's native search cannot
	// express. The filterable path answers it instead.
	ErrUnsupported = errors.New("unsupported by store")
	// ErrInvalidQuery signals a request the API layer cannot interpret.
	ErrInvalidQuery = errors.New("invalid query")
)
