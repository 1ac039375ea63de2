package memocalc

import (
	"context"
	"strings"
)

// normalizeWidth maps full-width digits (U+FF10..U+FF19) to ASCII. Nothing else changes.
func normalizeWidth(_ context.Context, text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			return r - 0xFEE0
		}
		return r
	}, text)
}

// stripParentheticals removes (...) and （...） asides in one scan. Nested asides of the
// same style lose only their innermost part; the scan is not repeated.
func stripParentheticals(_ context.Context, text string) string {
	return parenPattern.ReplaceAllString(text, "")
}

// stripDigitCounts removes "<n>桁" annotations together with their number.
func stripDigitCounts(_ context.Context, text string) string {
	return digitCountPattern.ReplaceAllString(text, "")
}

// collapseThousands drops one layer of thousands separators; run to a fixpoint it turns
// "1,234,567" into "1234567".
func collapseThousands(_ context.Context, text string) string {
	return thousandsPattern.ReplaceAllString(text, "${1}${2}")
}

func sameText(a, b string) bool {
	return a == b
}
