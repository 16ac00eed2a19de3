package menuimport

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	quotesRe     = regexp.MustCompile(`[“”"«»]`)
	// "12,50 €" / "12.5€" -> "12.50" / "12.5"
	priceRe = regexp.MustCompile(`(\d+)[,.](\d{1,2})\s*€?`)
	fenceRe = regexp.MustCompile("```(?:json)?")
)

// cleanText flattens OCR output into one line, normalises quotes and decimal
// prices, and keeps at most maxWords words.
func cleanText(raw string, maxWords int) string {
	text := whitespaceRe.ReplaceAllString(raw, " ")
	text = strings.TrimSpace(text)
	text = quotesRe.ReplaceAllString(text, "'")
	text = priceRe.ReplaceAllString(text, "${1}.${2}")

	words := strings.Fields(text)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

// stripFences removes markdown code fences around a JSON answer.
func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}
