// Package condition parses a market's Yes condition ("81° to 82°",
// "83° or above", "74° or below") into a predicate over the official
// integer temperature.
package condition

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the shape of a condition.
type Kind int

const (
	Between Kind = iota + 1
	Above
	Below
)

func (k Kind) String() string {
	switch k {
	case Between:
		return "between"
	case Above:
		return "above"
	case Below:
		return "below"
	default:
		return "unknown"
	}
}

// Condition is a parsed Yes predicate. Low and High are set for Between;
// Threshold for Above and Below.
type Condition struct {
	Kind      Kind
	Low       decimal.Decimal
	High      decimal.Decimal
	Threshold decimal.Decimal
}

// NewBetween returns Between(low, high).
func NewBetween(low, high decimal.Decimal) Condition {
	return Condition{Kind: Between, Low: low, High: high}
}

// NewAbove returns Above(t).
func NewAbove(t decimal.Decimal) Condition {
	return Condition{Kind: Above, Threshold: t}
}

// NewBelow returns Below(t).
func NewBelow(t decimal.Decimal) Condition {
	return Condition{Kind: Below, Threshold: t}
}

// Holds reports whether an official temperature v resolves the market Yes.
//
//   - Between(lo, hi): floor(lo) <= v <= floor(hi)
//   - Above(t):        v > floor(t); an integer threshold itself resolves No
//   - Below(t):        v <= floor(t)
func (c Condition) Holds(v int) bool {
	switch c.Kind {
	case Between:
		return floor(c.Low) <= v && v <= floor(c.High)
	case Above:
		return v > floor(c.Threshold)
	case Below:
		return v <= floor(c.Threshold)
	default:
		return false
	}
}

// EntirelyBelow reports whether every Yes outcome of c lies under v.
// Above conditions are never entirely below anything.
func (c Condition) EntirelyBelow(v int) bool {
	switch c.Kind {
	case Between:
		return c.High.LessThan(decimal.NewFromInt(int64(v)))
	case Below:
		return c.Threshold.LessThan(decimal.NewFromInt(int64(v)))
	default:
		return false
	}
}

func (c Condition) String() string {
	switch c.Kind {
	case Between:
		return fmt.Sprintf("between %s and %s", c.Low, c.High)
	case Above:
		return fmt.Sprintf("above %s", c.Threshold)
	case Below:
		return fmt.Sprintf("below %s", c.Threshold)
	default:
		return "unknown"
	}
}

func floor(d decimal.Decimal) int {
	return int(d.Floor().IntPart())
}
