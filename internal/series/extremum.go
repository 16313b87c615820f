package series

import (
	"github.com/rickgao/kalshi-highs/internal/nws"
)

// Extremum is the day's maximum reading so far.
type Extremum struct {
	Max    CorrectedObservation
	Latest CorrectedObservation

	// Settled is true when the latest reading is below the maximum. This is
	// a heuristic: a dip followed by a new rise between polls is not seen.
	Settled bool
}

// Rounded returns the official integer value of the maximum.
func (e Extremum) Rounded() int {
	return nws.Round(e.Max.Fahrenheit)
}

// FindExtremum scans obs for the maximum Fahrenheit estimate (earliest wins
// ties) and the latest reading.
func FindExtremum(obs []CorrectedObservation) (Extremum, error) {
	if len(obs) == 0 {
		return Extremum{}, ErrNoObservations
	}

	maxObs, latest := obs[0], obs[0]
	for _, o := range obs[1:] {
		if o.Fahrenheit.GreaterThan(maxObs.Fahrenheit) {
			maxObs = o
		}
		if !o.Timestamp.Before(latest.Timestamp) {
			latest = o
		}
	}

	return Extremum{
		Max:     maxObs,
		Latest:  latest,
		Settled: latest.Fahrenheit.LessThan(maxObs.Fahrenheit),
	}, nil
}
