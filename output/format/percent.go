package format

import (
	"math"
	"strconv"
)

// DefaultPrecision is the number of decimals FormatPercentage uses by default.
const DefaultPrecision = 2

type percentOptions struct {
	precision int
}

// PercentOption configures FormatPercentage.
type PercentOption func(*percentOptions)

// WithPrecision sets the number of decimals. Negative values mean 0.
func WithPrecision(precision int) PercentOption {
	return func(o *percentOptions) {
		if precision < 0 {
			precision = 0
		}
		o.precision = precision
	}
}

// FormatPercentage returns value/total as a fixed-point percentage string.
// Halves are rounded away from zero, so 12.5 at precision 0 is "13".
//
// A zero total is not special-cased: the result is "NaN", "+Inf" or "-Inf".
func FormatPercentage(value, total float64, opts ...PercentOption) string {
	o := percentOptions{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&o)
	}
	return strconv.FormatFloat(roundHalfAway(value/total*100, o.precision), 'f', o.precision, 64)
}

// roundHalfAway rounds x to precision decimals, halves away from zero.
// Values whose scaled form is not finite, or already has no fractional
// bits, are returned unchanged.
func roundHalfAway(x float64, precision int) float64 {
	scale := math.Pow10(precision)
	scaled := x * scale
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) || math.Abs(scaled) >= 1<<52 {
		return x
	}
	return math.Round(scaled) / scale
}
