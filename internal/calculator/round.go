package calculator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownRounding is returned by ParseRoundingMode for unrecognised names.
var ErrUnknownRounding = errors.New("unknown rounding mode")

// RoundingMode selects how results are rounded to two decimal places.
type RoundingMode string

const (
	// RoundHalfUp scales the binary value by 100 and rounds to the nearest
	// integer, ties toward positive infinity. 1.005 becomes 1.0 because
	// 1.005*100 is 100.49999999999999.
	RoundHalfUp RoundingMode = "half_up"
	// RoundDecimal rounds the shortest decimal representation half away
	// from zero. 1.005 becomes 1.01.
	RoundDecimal RoundingMode = "decimal"
)

// ParseRoundingMode maps a config or flag value to a RoundingMode.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_up", "float":
		return RoundHalfUp, nil
	case "decimal":
		return RoundDecimal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRounding, s)
	}
}

// Round2 rounds x to two decimal places using RoundHalfUp.
func Round2(x float64) float64 {
	return float64(roundHalfUp(x*100)) / 100
}

// roundDecimal2 rounds x to two decimal places using RoundDecimal.
// Non-finite values go through Round2 since they have no decimal form.
func roundDecimal2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Round2(x)
	}
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}

// roundHalfUp returns the integer closest to x, ties toward positive
// infinity. NaN maps to 0 and out-of-range values saturate to the int64 range.
func roundHalfUp(x float64) int64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x >= math.MaxInt64:
		return math.MaxInt64
	case x <= math.MinInt64:
		return math.MinInt64
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	return int64(f)
}
