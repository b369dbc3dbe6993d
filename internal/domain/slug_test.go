package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr bool
	}{
		{"tadao-ando", false},
		{"sanaa_2", false},
		{"Tadao.Ando", false},
		{"", true},
		{"-lead", true},
		{"a/b", true},
		{"光の教会", true},
		{strings.Repeat("a", MaxSlugLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSlug(%q) err = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}
