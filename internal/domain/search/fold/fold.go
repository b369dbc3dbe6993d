// Package fold maps Japanese kana between hiragana and katakana so that a
// query typed in one script also matches records written in the other.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Offset between a hiragana code point and its katakana counterpart.
const kanaOffset = 0x60

const (
	hiraganaFirst = 0x3041 // ぁ
	hiraganaLast  = 0x3096 // ゖ
	katakanaFirst = 0x30A1 // ァ
	katakanaLast  = 0x30F6 // ヶ
	hiraIterFirst = 0x309D // ゝ
	hiraIterLast  = 0x309E // ゞ
	kataIterFirst = 0x30FD // ヽ
	kataIterLast  = 0x30FE // ヾ
)

// Variants are the two script-folded forms of a term.
type Variants struct {
	Katakana string // hiragana mapped to katakana
	Hiragana string // katakana mapped to hiragana
}

// Applies reports whether the term has at least one Hiragana, Katakana or Han rune.
func Applies(term string) bool {
	for _, r := range term {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// Fold returns both variants of term. ok is false when folding does not
// apply; Han and all non-kana runes are carried over unchanged.
func Fold(term string) (v Variants, ok bool) {
	if !Applies(term) {
		return Variants{}, false
	}
	full := widenKana(term)
	return Variants{
		Katakana: strings.Map(ToKatakana, full),
		Hiragana: strings.Map(ToHiragana, full),
	}, true
}

// ToKatakana maps one hiragana rune to katakana, leaving others as is.
func ToKatakana(r rune) rune {
	switch {
	case r >= hiraganaFirst && r <= hiraganaLast,
		r >= hiraIterFirst && r <= hiraIterLast:
		return r + kanaOffset
	default:
		return r
	}
}

// ToHiragana maps one katakana rune to hiragana, leaving others as is.
// ヷ-ヺ and the prolonged sound mark have no hiragana form and stay.
func ToHiragana(r rune) rune {
	switch {
	case r >= katakanaFirst && r <= katakanaLast,
		r >= kataIterFirst && r <= kataIterLast:
		return r - kanaOffset
	default:
		return r
	}
}

// widenKana converts runs of half-width katakana (U+FF65-U+FF9F) to
// full-width. NFKC composes a base kana with a following half-width
// voicing mark into one rune. Other half-width forms are left alone so
// ASCII terms keep their spelling.
func widenKana(s string) string {
	if !strings.ContainsFunc(s, isHalfwidthKana) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) * 2)

	run := make([]rune, 0, 8)
	flush := func() {
		if len(run) > 0 {
			b.WriteString(norm.NFKC.String(string(run)))
			run = run[:0]
		}
	}
	for _, r := range s {
		if isHalfwidthKana(r) {
			run = append(run, r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

func isHalfwidthKana(r rune) bool {
	return r >= 0xFF65 && r <= 0xFF9F &&
		width.LookupRune(r).Kind() == width.EastAsianHalfwidth
}
