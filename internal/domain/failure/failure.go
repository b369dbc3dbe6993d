// Package failure sorts store errors into the three outcomes the search
// engine reacts to differently.
package failure

import (
	"context"
	"errors"

	"github.com/pocketnavi/pocketnavi/internal/domain"
)

// Kind is the recovery class of a failed store call.
type Kind int

const (
	// None means no error.
	None Kind = iota
	// NotFound is terminal: return empty, do not fall back.
	NotFound
	// Transport triggers the fallback chain (or skips one fallback call).
	Transport
	// Timeout ends the strategy and returns what was accumulated.
	Timeout
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case NotFound:
		return "not_found"
	case Transport:
		return "transport"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Classify maps an error to its Kind. Malformed responses count as transport
// errors. Anything unrecognised is treated as transport.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return None
	case errors.Is(err, domain.ErrNotFound):
		return NotFound
	case errors.Is(err, domain.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return Timeout
	default:
		return Transport
	}
}

// Recoverable reports whether the fallback chain should take over.
func Recoverable(err error) bool {
	return Classify(err) == Transport
}
