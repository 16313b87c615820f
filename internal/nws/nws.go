// Package nws holds the resolving authority's arithmetic: the half-up
// rounding rule used for official daily highs and the exact Celsius and
// Fahrenheit conversions every other package goes through.
//
// All math is done in shopspring decimal. A reading like 76.5 must be
// recognized as an exact tie, which float64 cannot promise once the value
// has been through a unit conversion.
package nws

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidMeasurement is returned for values that are not finite numbers.
var ErrInvalidMeasurement = errors.New("invalid measurement")

var (
	half       = decimal.New(5, -1)
	nineFifths = decimal.New(18, -1)
	thirtyTwo  = decimal.NewFromInt(32)
)

// Round converts a Fahrenheit value to the integer used for resolution.
// Ties round toward positive infinity regardless of sign (76.5 -> 77,
// -2.5 -> -2); everything else rounds to the nearest integer.
func Round(f decimal.Decimal) int {
	return int(f.Add(half).Floor().IntPart())
}

// RoundFloat is Round for float64 input. The float is converted through its
// shortest decimal representation, so 76.5 stays an exact tie.
func RoundFloat(f float64) (int, error) {
	d, err := FromFloat(f)
	if err != nil {
		return 0, err
	}
	return Round(d), nil
}

// FromFloat converts a float reading to decimal, rejecting NaN and infinities.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidMeasurement, f)
	}
	return decimal.NewFromFloat(f), nil
}

// CelsiusToFahrenheit applies F = C × 9/5 + 32 without rounding.
func CelsiusToFahrenheit(c decimal.Decimal) decimal.Decimal {
	return c.Mul(nineFifths).Add(thirtyTwo)
}

// FahrenheitToCelsius applies C = (F − 32) × 5/9. The result is exact to
// decimal.DivisionPrecision digits.
func FahrenheitToCelsius(f decimal.Decimal) decimal.Decimal {
	return f.Sub(thirtyTwo).Div(nineFifths)
}
