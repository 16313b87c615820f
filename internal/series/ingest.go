package series

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-highs/internal/model"
)

// timestampLayouts are tried in order. Feeds report either RFC 3339 or the
// colon-less offset form ("2025-06-13T14:51:00-0400").
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

// RawSeries is a station timeseries as delivered by the temperature feed.
// Timestamps and Readings are parallel; a nil reading is a null.
type RawSeries struct {
	Station    string
	Timezone   string // IANA zone reported by the feed, informational
	Unit       model.Unit
	Timestamps []string
	Readings   []*string
}

// Date is a calendar date in the station's reporting convention.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DailySeries holds one station's observations for one date, strictly
// ascending by timestamp.
type DailySeries struct {
	Station      string
	Date         Date
	Observations []model.Observation
}

// Len returns the number of observations.
func (s DailySeries) Len() int { return len(s.Observations) }

// Ingest builds the DailySeries for date from raw.
//
// Entries with a null or unparseable reading or an unparseable timestamp are
// skipped. An empty or structurally incomplete raw series fails with
// ErrDataUnavailable.
func Ingest(raw RawSeries, date Date, logger *slog.Logger) (DailySeries, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if len(raw.Timestamps) == 0 || len(raw.Readings) == 0 {
		return DailySeries{}, fmt.Errorf("%w: station %q returned %d timestamps and %d readings",
			ErrDataUnavailable, raw.Station, len(raw.Timestamps), len(raw.Readings))
	}

	n := len(raw.Timestamps)
	if len(raw.Readings) != n {
		logger.Warn("timestamp and reading counts differ, pairing the shorter prefix",
			"station", raw.Station,
			"timestamps", len(raw.Timestamps),
			"readings", len(raw.Readings),
		)
		n = min(n, len(raw.Readings))
	}

	var skipped int
	obs := make([]model.Observation, 0, n)
	for i := 0; i < n; i++ {
		if raw.Readings[i] == nil {
			skipped++
			continue
		}

		ts, err := parseTimestamp(raw.Timestamps[i])
		if err != nil {
			logger.Debug("skipping observation", "station", raw.Station, "timestamp", raw.Timestamps[i], "error", err)
			skipped++
			continue
		}

		value, err := decimal.NewFromString(strings.TrimSpace(*raw.Readings[i]))
		if err != nil {
			logger.Debug("skipping observation", "station", raw.Station, "reading", *raw.Readings[i], "error", err)
			skipped++
			continue
		}

		if DateOf(ts) != date {
			continue
		}

		obs = append(obs, model.Observation{
			Timestamp: ts,
			Raw:       value,
			Unit:      raw.Unit,
		})
	}

	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Timestamp.Before(obs[j].Timestamp)
	})

	// Drop duplicate timestamps, keeping the first report.
	unique := obs[:0]
	for _, o := range obs {
		if len(unique) > 0 && unique[len(unique)-1].Timestamp.Equal(o.Timestamp) {
			skipped++
			continue
		}
		unique = append(unique, o)
	}

	logger.Debug("ingested daily series",
		"station", raw.Station,
		"date", date,
		"observations", len(unique),
		"skipped", skipped,
	)

	return DailySeries{
		Station:      raw.Station,
		Date:         date,
		Observations: unique,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, lastErr)
}
