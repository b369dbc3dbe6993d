// Package storeerr translates store errors into domain errors.
package storeerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/domain"
)

// Translate wraps err with the matching domain sentinel, keeping the
// original chain for logs. nil stays nil.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrKeyNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	case errors.Is(err, db.ErrUnsupported):
		return fmt.Errorf("%w: %w", domain.ErrUnsupported, err)
	case errors.Is(err, db.ErrMalformed):
		return fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
}
