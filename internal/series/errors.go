package series

import "errors"

var (
	// ErrDataUnavailable means the feed returned nothing usable at all.
	// Nothing downstream can run.
	ErrDataUnavailable = errors.New("temperature data unavailable")

	// ErrNoObservations means no reading qualified for the target date.
	ErrNoObservations = errors.New("no observations for date")
)
