package domain

import (
	"fmt"
	"regexp"
)

var slugRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// MaxSlugLength bounds slugs accepted from URLs.
const MaxSlugLength = 200

// ValidateSlug checks that a building or architect slug is URL-safe.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidQuery)
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("%w: slug too long (max %d)", ErrInvalidQuery, MaxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: slug must be alphanumeric with dots, underscores and hyphens", ErrInvalidQuery)
	}
	return nil
}
