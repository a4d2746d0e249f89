// Package textutil provides text canonicalization helpers for keyword
// matching over Vietnamese prose. Normalization is used for containment
// checks only, never for text shown to the learner.
package textutil

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases the input, strips diacritics by decomposing to NFD
// and dropping combining marks, replaces every non-alphanumeric rune with a
// space and collapses runs of whitespace. The function is idempotent.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	decomposed := norm.NFD.String(lowered)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark, dropped
		case r == 'đ':
			b.WriteRune('d')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Summarize trims text to at most limit runes, cutting back to the last word
// boundary and appending an ellipsis. Text already within the limit is
// returned unchanged.
func Summarize(text string, limit int) string {
	clean := strings.TrimSpace(text)
	runes := []rune(clean)
	if len(runes) <= limit {
		return clean
	}
	truncated := string(runes[:limit])
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "…"
}

// FormatYearSpan renders a start/end year pair as a display label. Negative
// years are rendered with the "TCN" (before common era) suffix. Either bound
// may be absent; both absent yields the empty string.
func FormatYearSpan(start, end *int) string {
	fmtYear := func(year *int) string {
		if year == nil {
			return ""
		}
		if *year < 0 {
			return strconv.Itoa(-*year) + " TCN"
		}
		return strconv.Itoa(*year)
	}

	startLabel := fmtYear(start)
	endLabel := fmtYear(end)
	if startLabel != "" && endLabel != "" {
		return startLabel + " - " + endLabel
	}
	if startLabel != "" {
		return startLabel
	}
	return endLabel
}

// Truncate hard-cuts text to at most limit runes with no ellipsis.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
