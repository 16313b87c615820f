package series

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-highs/internal/model"
	"github.com/rickgao/kalshi-highs/internal/nws"
)

// Offsets around a reconstructed Celsius reading that cover every value the
// station could have rounded to it.
var (
	WindowBelow = decimal.New(5, -1)
	WindowAbove = decimal.New(4, -1)
)

var half = decimal.New(5, -1)

// Interval is a closed Celsius range.
type Interval struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// CorrectedObservation is an Observation after cadence correction.
type CorrectedObservation struct {
	Timestamp  time.Time
	Raw        decimal.Decimal // As reported, in Unit
	Unit       model.Unit
	Celsius    decimal.Decimal // Lowest value consistent with the report
	Fahrenheit decimal.Decimal // Point estimate used downstream
	PreRounded bool            // Station had already rounded the report
}

// Uncertainty returns the Celsius window the true reading may lie in, or
// nil when the report was not pre-rounded.
func (c CorrectedObservation) Uncertainty() *Interval {
	if !c.PreRounded {
		return nil
	}
	return &Interval{
		Low:  c.Celsius.Sub(WindowBelow),
		High: c.Celsius.Add(WindowAbove),
	}
}

// Corrector reconstructs readings that a station rounded to half degrees
// Celsius before reporting. Reports whose minute falls on the station's
// reporting interval are treated as rounded.
type Corrector struct {
	interval int // minutes
}

// NewCorrector returns a Corrector for a station reporting every interval.
// Intervals shorter than a minute disable correction.
func NewCorrector(interval time.Duration) *Corrector {
	return &Corrector{interval: int(interval / time.Minute)}
}

// OnBoundary reports whether t falls on the reporting boundary.
func (c *Corrector) OnBoundary(t time.Time) bool {
	if c.interval <= 0 {
		return false
	}
	return t.Minute()%c.interval == 0
}

// Correct returns the corrected form of o.
//
// A boundary report with a whole-degree value V came from [V−0.5, V+0.5), so
// the lowest candidate V−0.5 is used. A negative half-degree report also
// moves down half a degree; a non-negative one is already the lowest
// candidate. Anything else is used as reported.
func (c *Corrector) Correct(o model.Observation) CorrectedObservation {
	out := CorrectedObservation{
		Timestamp: o.Timestamp,
		Raw:       o.Raw,
		Unit:      o.Unit,
	}

	if o.Unit == model.Fahrenheit {
		out.Fahrenheit = o.Raw
		out.Celsius = nws.FahrenheitToCelsius(o.Raw)
		return out
	}

	out.Celsius = o.Raw
	if c.OnBoundary(o.Timestamp) {
		frac := o.Raw.Sub(o.Raw.Truncate(0)).Abs()
		switch {
		case frac.IsZero():
			out.Celsius = o.Raw.Sub(half)
			out.PreRounded = true
		case frac.Equal(half) && o.Raw.IsNegative():
			out.Celsius = o.Raw.Sub(half)
			out.PreRounded = true
		case frac.Equal(half):
			out.PreRounded = true
		}
	}

	out.Fahrenheit = nws.CelsiusToFahrenheit(out.Celsius)
	return out
}

// CorrectAll corrects every observation of s, preserving order.
func (c *Corrector) CorrectAll(s DailySeries) []CorrectedObservation {
	out := make([]CorrectedObservation, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = c.Correct(o)
	}
	return out
}
