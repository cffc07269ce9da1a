package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var priceJunkRegex = regexp.MustCompile(`[^0-9,.\-]`)

// ParsePrice sanitizes a scraped price string to a float. All characters
// except digits, separators and a sign are stripped, commas become decimal
// points, and when several points remain only the last one is kept as the
// decimal separator ("1.234,56" parses to 1234.56). A non-numeric result
// yields 0.0; callers treat such candidates as non-comparable.
func ParsePrice(raw string) float64 {
	cleaned := priceJunkRegex.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0.0
	}
	return value
}
