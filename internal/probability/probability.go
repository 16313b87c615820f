// Package probability scores a market condition against the set of official
// temperatures a reading could resolve to.
//
// Every integer in the support is treated as equally likely. That is a
// simplifying assumption, not a measured distribution.
package probability

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-highs/internal/condition"
	"github.com/rickgao/kalshi-highs/internal/nws"
	"github.com/rickgao/kalshi-highs/internal/series"
)

// Assessment is the outcome of scoring one condition.
type Assessment struct {
	Support        []int // Candidate official temperatures, ascending
	Favorable      int   // How many of them resolve Yes
	YesProbability decimal.Decimal
	NoProbability  decimal.Decimal
}

// Bounds returns the lowest and highest candidate.
func (a Assessment) Bounds() (low, high int) {
	return a.Support[0], a.Support[len(a.Support)-1]
}

// Support lists the official integer temperatures consistent with a
// Fahrenheit point estimate and its Celsius uncertainty window. Without a
// window the support is the single rounded point.
func Support(pointF decimal.Decimal, window *series.Interval) []int {
	if window == nil {
		return []int{nws.Round(pointF)}
	}

	low := nws.Round(nws.CelsiusToFahrenheit(window.Low))
	high := nws.Round(nws.CelsiusToFahrenheit(window.High))
	if low > high {
		return []int{nws.Round(pointF)}
	}

	out := make([]int, 0, high-low+1)
	for v := low; v <= high; v++ {
		out = append(out, v)
	}
	return out
}

// Assess computes Yes and No probabilities for cond. No is 1 − Yes exactly.
func Assess(pointF decimal.Decimal, window *series.Interval, cond condition.Condition) Assessment {
	support := Support(pointF, window)

	favorable := 0
	for _, v := range support {
		if cond.Holds(v) {
			favorable++
		}
	}

	yes := decimal.NewFromInt(int64(favorable)).Div(decimal.NewFromInt(int64(len(support))))
	return Assessment{
		Support:        support,
		Favorable:      favorable,
		YesProbability: yes,
		NoProbability:  decimal.NewFromInt(1).Sub(yes),
	}
}
