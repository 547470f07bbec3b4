package domain

import (
	"fmt"
	"math"
)

// DollarsToCents converts a float64 dollar amount to int64 cents, the
// integer minor unit all book prices are kept in. Inputs with more than
// 2 decimal places are rejected rather than rounded.
func DollarsToCents(f float64) (int64, error) {
	// Scale by 1000 and round to expose a third decimal place without
	// tripping over floating-point artifacts (1.10*1000 = 1099.999...).
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("prices must have at most 2 decimal places")
	}
	return int64(math.Round(f * 100)), nil
}

// CentsToDollars converts an int64 cents value to a float64 dollar amount
// for rendering.
func CentsToDollars(c int64) float64 {
	return float64(c) / 100.0
}

// FormatCents renders a cents value as a dollar string, e.g. 10050 -> "100.50".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
