// Package utils holds small type-conversion helpers shared by record codecs
// and processors.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout is the date format used in flat files (ISO local date).
const DateLayout = "2006-01-02"

// ParseDate parses an ISO local date field value.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date the way ParseDate reads it.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseAmount parses a monetary field value.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse amount %q: %w", s, err)
	}
	return v, nil
}

// RoundHalfUp rounds v to two decimal places, half away from zero.
func RoundHalfUp(v float64) float64 {
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

// FormatAmount renders a balance with exactly two decimal places.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(RoundHalfUp(v), 'f', 2, 64)
}
