// Package classify implements the rule-based triage pipeline: text
// normalization, phrase matching, mood/intent classification, emotional-state
// derivation and the final response-strategy decision.
package classify

import (
	"strings"
	"unicode"
)

// =============================================================================
// Text Normalizer
// =============================================================================

// foldTable maps Azerbaijani letters to base Latin equivalents. Every
// classifier in this package normalizes through this same table; keyword
// constants below are written in already-folded form.
var foldTable = map[rune]rune{
	'ə': 'e', 'Ə': 'e',
	'ş': 's', 'Ş': 's',
	'ı': 'i', 'İ': 'i', 'I': 'i',
	'ö': 'o', 'Ö': 'o',
	'ü': 'u', 'Ü': 'u',
	'ç': 'c', 'Ç': 'c',
	'ğ': 'g', 'Ğ': 'g',
}

// Normalize produces the canonical comparison form of a message: lowercase,
// diacritics folded, punctuation and digits stripped, character runs of 3+
// capped at 2, whitespace collapsed. Idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	var prev rune
	runLen := 0
	for _, r := range text {
		if folded, ok := foldTable[r]; ok {
			r = folded
		}
		r = unicode.ToLower(r)
		if folded, ok := foldTable[r]; ok {
			r = folded
		}

		switch {
		case unicode.IsDigit(r):
			continue
		case unicode.IsLetter(r):
			// keep
		case unicode.IsSpace(r):
			r = ' '
		default:
			// Punctuation and symbols become spaces so "yaxşı,çox" splits.
			r = ' '
		}

		if r == prev {
			runLen++
			// Cap elongation at two ("soooo" → "soo") without collapsing
			// legitimate doubled letters.
			if r != ' ' && runLen > 2 {
				continue
			}
			if r == ' ' {
				continue
			}
		} else {
			runLen = 1
		}
		prev = r
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

// Variants returns the alternate spellings matching must be robust to: the
// normalized form, a space-removed form, and an e-dropped contraction of the
// joined form ("nə oldu" → "neoldu" → "noldu"), which catches the common
// colloquial elision. Single words get the "ne"→"no" vowel shift instead.
func Variants(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	seen := map[string]bool{normalized: true}
	variants := []string{normalized}

	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	if strings.Contains(normalized, " ") {
		joined := strings.ReplaceAll(normalized, " ", "")
		add(joined)
		if strings.Contains(joined, "ne") {
			add(strings.ReplaceAll(joined, "ne", "n"))
		}
	} else if strings.Contains(normalized, "ne") {
		add(strings.ReplaceAll(normalized, "ne", "no"))
	}

	return variants
}

// containsAny reports whether any keyword appears in the normalized message.
// Keywords are expected in folded form.
func containsAny(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// firstMatchOf returns the first keyword present in the normalized message.
func firstMatchOf(normalized string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(normalized, kw) {
			return kw, true
		}
	}
	return "", false
}
