package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// segment splits every Han, Hiragana and Katakana rune into its own token
// so the unicode61 tokenizer indexes Japanese text as unigrams. A query
// phrase segmented the same way then matches any substring.
func segment(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if isCJK(r) {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isCJK(r rune) bool {
	switch {
	case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana):
		return true
	case r == 'ー', r == '々', r == 'ゝ', r == 'ゞ', r == 'ヽ', r == 'ヾ':
		return true
	}
	return false
}

// hasToken reports whether s contains anything the tokenizer keeps.
func hasToken(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// ftsPhrase quotes s as an FTS5 phrase.
func ftsPhrase(s string) string {
	return `"` + strings.ReplaceAll(segment(s), `"`, `""`) + `"`
}

// indexColumns are the FTS columns holding the searchable fields, in
// the order indexSource selects them.
var indexColumns = []string{
	"title", "title_en", "building_types", "building_types_en", "location", "location_en",
}

// errNoTokens marks a term the tokenizer would reduce to nothing. Such a
// term can only be answered by substring matching.
var errNoTokens = errors.New("term has no indexable characters")

// matchExpr builds the MATCH expression restricted to the searchable
// columns: the alternatives of one term are ORed, terms are ANDed.
// Alternatives without indexable characters are dropped; a term left with
// none fails with errNoTokens.
func matchExpr(terms [][]string) (string, error) {
	groups := make([]string, 0, len(terms))
	for _, alts := range terms {
		seen := make(map[string]struct{}, len(alts))
		var phrases []string
		for _, alt := range alts {
			if !hasToken(alt) {
				continue
			}
			p := ftsPhrase(alt)
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			phrases = append(phrases, p)
		}
		if len(phrases) == 0 {
			return "", fmt.Errorf("%w: %q", errNoTokens, alts)
		}
		groups = append(groups, "("+strings.Join(phrases, " OR ")+")")
	}
	if len(groups) == 0 {
		return "", errNoTokens
	}
	return "{" + strings.Join(indexColumns, " ") + "} : (" + strings.Join(groups, " AND ") + ")", nil
}
