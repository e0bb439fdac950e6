package calculator

import "github.com/montanaflynn/stats"

// Calculator evaluates the numeric utilities with a fixed rounding mode.
// The zero value uses RoundHalfUp. A Calculator holds no mutable state and
// is safe for concurrent use.
type Calculator struct {
	mode RoundingMode
}

// NewCalculator creates a Calculator that rounds with mode.
func NewCalculator(mode RoundingMode) *Calculator {
	return &Calculator{mode: mode}
}

var defaultCalculator = NewCalculator(RoundHalfUp)

// Mode returns the rounding mode in effect.
func (c *Calculator) Mode() RoundingMode {
	if c.mode == "" {
		return RoundHalfUp
	}
	return c.mode
}

// Round rounds x to two decimal places.
func (c *Calculator) Round(x float64) float64 {
	if c.Mode() == RoundDecimal {
		return roundDecimal2(x)
	}
	return Round2(x)
}

// Average returns the mean of values rounded to two decimals, or 0 when
// values is nil or empty.
func (c *Calculator) Average(values []float64) float64 {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0.0
	}
	return c.Round(mean)
}

// Maximum returns the greatest of a, b and c.
func (c *Calculator) Maximum(a, b, d int) int {
	return max(max(a, b), d)
}

// Discount subtracts discountPercent percent from price and rounds the
// result. Neither argument is range checked: a negative percentage raises
// the price.
func (c *Calculator) Discount(price, discountPercent float64) float64 {
	discountAmount := price * (discountPercent / 100.0)
	return c.Round(price - discountAmount)
}

// CalculateAverage returns the mean of values rounded half up to two
// decimals. nil and empty input yield 0.
func CalculateAverage(values []float64) float64 {
	return defaultCalculator.Average(values)
}

// FindMaximum returns the greatest of three integers.
func FindMaximum(a, b, c int) int {
	return defaultCalculator.Maximum(a, b, c)
}

// ApplyDiscount returns price reduced by discountPercent percent, rounded
// half up to two decimals.
func ApplyDiscount(price, discountPercent float64) float64 {
	return defaultCalculator.Discount(price, discountPercent)
}
