// Package util holds small text and number helpers shared across layers.
package util

import (
	"math"
	"strconv"
)

// FirstInt returns the first run of ASCII digits in s as an int, or 0 if there is none.
// "10kg" gives 10 and "approx 5 boxes" gives 5.
func FirstInt(s string) int {
	start := -1
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		if isDigit && start < 0 {
			start = i
		}
		if !isDigit && start >= 0 {
			return atoiOrZero(s[start:i])
		}
	}
	if start >= 0 {
		return atoiOrZero(s[start:])
	}

	return 0
}

func atoiOrZero(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Only overflow can fail here.
		return 0
	}

	return n
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))

	return math.Round(v*factor) / factor
}
