package scanner

import (
	"strings"
	"time"

	"github.com/rickgao/kalshi-highs/internal/series"
)

// TargetDate is the calendar date of now in loc. Callers pass a fixed
// standard-time zone so the settlement day does not shift with daylight
// saving.
func TargetDate(now time.Time, loc *time.Location) series.Date {
	return series.DateOf(now.In(loc))
}

// DateToken formats d the way market tickers embed it ("25JUN13").
func DateToken(d series.Date) string {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return strings.ToUpper(t.Format("06Jan02"))
}
