// ABOUTME: Minimal precision formatting for fitness values
// ABOUTME: Formats float64 pairs with just enough digits to show the difference, precision only grows

package main

import (
	"fmt"
	"math"
)

const maxFitnessPrecision = 10

// FormatMinimalPrecision returns curr formatted with the minimum precision
// needed to distinguish it from prev.
func FormatMinimalPrecision(prev, curr float64) string {
	if math.IsNaN(prev) || math.IsNaN(curr) || math.IsInf(prev, 0) || math.IsInf(curr, 0) {
		return fmt.Sprintf("%.2f", curr)
	}

	if prev == curr {
		return fmt.Sprintf("%.2f", curr)
	}

	for precision := 1; precision <= maxFitnessPrecision; precision++ {
		format := fmt.Sprintf("%%.%df", precision)
		if fmt.Sprintf(format, prev) != fmt.Sprintf(format, curr) {
			clarity := precision + 1
			if clarity > maxFitnessPrecision {
				clarity = maxFitnessPrecision
			}

			return fmt.Sprintf(fmt.Sprintf("%%.%df", clarity), curr)
		}
	}

	return fmt.Sprintf(fmt.Sprintf("%%.%df", maxFitnessPrecision), curr)
}

// FormatWithMonotonicPrecision is FormatMinimalPrecision with a floor: the
// precision used never decreases across a sequence of calls, so a
// progress log doesn't visually "lose" digits as later updates happen to
// need fewer of them. It returns the formatted string plus the
// (possibly unchanged) floor to pass into the next call.
func FormatWithMonotonicPrecision(prev, curr float64, minPrecision int) (string, int) {
	s := FormatMinimalPrecision(prev, curr)

	precision := minPrecision

	for p := 1; p <= maxFitnessPrecision; p++ {
		if fmt.Sprintf(fmt.Sprintf("%%.%df", p), curr) == s {
			precision = p
			break
		}
	}

	if precision < minPrecision {
		precision = minPrecision
		s = fmt.Sprintf(fmt.Sprintf("%%.%df", precision), curr)
	}

	return s, precision
}
