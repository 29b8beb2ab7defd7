// Package core holds the domain logic of the finance tracker client:
// fixed-point money handling, date encoding, transaction filter
// normalization and budget aggregation. Everything here is pure; the
// ledger service round trips live in the adapter packages.
package core

import (
	"math"
	"strconv"
	"strings"
)

// MinorUnitScale is the number of minor currency units per display unit.
const MinorUnitScale = 100

// ToMinorUnits converts a display-unit value to integer minor units,
// rounding half away from zero on the scaled value. NaN and infinities
// are rejected with ErrInvalidAmount, as are values whose scaled
// magnitude does not fit in an int64.
func ToMinorUnits(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	scaled := math.Round(v * MinorUnitScale)
	if scaled > math.MaxInt64 || scaled < math.MinInt64 {
		return 0, ErrInvalidAmount
	}
	return int64(scaled), nil
}

// ToDisplay converts minor units back to a display value. The division
// is exact for every amount the tracker works with, so no rounding is
// applied here.
func ToDisplay(minor int64) float64 {
	return float64(minor) / MinorUnitScale
}

// ParseAmount converts a user-typed decimal string to minor units.
// Both dot and comma decimal separators are accepted; a leading sign
// is allowed since transaction amounts may be negative.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return ToMinorUnits(v)
}
