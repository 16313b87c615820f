package series

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/kalshi-highs/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func str(s string) *string { return &s }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, label ...string) {
	t.Helper()
	name := "value"
	if len(label) > 0 {
		name = label[0]
	}
	assert.True(t, got.Equal(dec(want)), "%s = %s, want %s", name, got, want)
}

var est = time.FixedZone("", -5*3600)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.June, 13, hour, minute, 0, 0, est)
}

func TestIngest(t *testing.T) {
	raw := RawSeries{
		Station: "KNYC",
		Unit:    model.Celsius,
		Timestamps: []string{
			"2025-06-13T14:51:00-0500",
			"2025-06-12T23:55:00-0500", // previous day
			"2025-06-13T09:00:00-0500",
			"not a time",
			"2025-06-13T10:00:00-05:00",
			"2025-06-13T11:00:00-0500",
			"2025-06-13T09:00:00-0500", // duplicate
			"2025-06-13T12:00:00-0500",
		},
		Readings: []*string{
			str("25.6"),
			str("20.0"),
			str("18.3"),
			str("19.0"),
			nil,
			str("garbage"),
			str("99"),
			str(" 24.0 "),
		},
	}

	got, err := Ingest(raw, Date{2025, time.June, 13}, nil)
	require.NoError(t, err)

	require.Equal(t, 3, got.Len())
	assert.Equal(t, "KNYC", got.Station)
	assertDecimal(t, "18.3", got.Observations[0].Raw)
	assertDecimal(t, "24.0", got.Observations[1].Raw)
	assertDecimal(t, "25.6", got.Observations[2].Raw)

	for i := 1; i < got.Len(); i++ {
		assert.True(t, got.Observations[i-1].Timestamp.Before(got.Observations[i].Timestamp), "not ascending at %d", i)
	}
	for _, o := range got.Observations {
		assert.Equal(t, model.Celsius, o.Unit)
	}
}

func TestIngest_DataUnavailable(t *testing.T) {
	tests := []struct {
		name string
		raw  RawSeries
	}{
		{"empty", RawSeries{Station: "KNYC"}},
		{"missing readings", RawSeries{Station: "KNYC", Timestamps: []string{"2025-06-13T09:00:00-0500"}}},
		{"missing timestamps", RawSeries{Station: "KNYC", Readings: []*string{str("20")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ingest(tt.raw, Date{2025, time.June, 13}, nil)
			assert.ErrorIs(t, err, ErrDataUnavailable)
		})
	}
}

func TestIngest_NoQualifyingObservations(t *testing.T) {
	raw := RawSeries{
		Station:    "KNYC",
		Timestamps: []string{"2025-06-12T09:00:00-0500", "2025-06-13T09:00:00-0500"},
		Readings:   []*string{str("20"), nil},
	}

	got, err := Ingest(raw, Date{2025, time.June, 13}, nil)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestIngest_MismatchedLengths(t *testing.T) {
	raw := RawSeries{
		Station:    "KNYC",
		Timestamps: []string{"2025-06-13T09:00:00-0500", "2025-06-13T10:00:00-0500", "2025-06-13T11:00:00-0500"},
		Readings:   []*string{str("20"), str("21")},
	}

	got, err := Ingest(raw, Date{2025, time.June, 13}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestCorrector_Correct(t *testing.T) {
	c := NewCorrector(5 * time.Minute)

	tests := []struct {
		name        string
		ts          time.Time
		raw         string
		unit        model.Unit
		wantCelsius string
		wantF       string
		wantRounded bool
	}{
		{"whole degree on boundary", at(14, 55), "25.0", model.Celsius, "24.5", "76.1", true},
		{"whole negative degree on boundary", at(6, 0), "-3", model.Celsius, "-3.5", "25.7", true},
		{"positive half on boundary", at(14, 0), "3.5", model.Celsius, "3.5", "38.3", true},
		{"negative half on boundary", at(14, 5), "-3.5", model.Celsius, "-4.0", "24.8", true},
		{"other fraction on boundary", at(14, 10), "24.3", model.Celsius, "24.3", "75.74", false},
		{"whole degree off boundary", at(14, 51), "25.0", model.Celsius, "25.0", "77", false},
		{"half off boundary", at(14, 52), "-3.5", model.Celsius, "-3.5", "25.7", false},
		{"fahrenheit feed untouched", at(14, 55), "77", model.Fahrenheit, "25", "77", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Correct(model.Observation{Timestamp: tt.ts, Raw: dec(tt.raw), Unit: tt.unit})
			assertDecimal(t, tt.wantCelsius, got.Celsius, "celsius")
			assertDecimal(t, tt.wantF, got.Fahrenheit, "fahrenheit")
			assert.Equal(t, tt.wantRounded, got.PreRounded)
			assertDecimal(t, tt.raw, got.Raw, "raw preserved")
		})
	}
}

func TestCorrector_Uncertainty(t *testing.T) {
	c := NewCorrector(5 * time.Minute)

	got := c.Correct(model.Observation{Timestamp: at(15, 0), Raw: dec("25.0"), Unit: model.Celsius})
	window := got.Uncertainty()
	require.NotNil(t, window)
	assertDecimal(t, "24.0", window.Low)
	assertDecimal(t, "24.9", window.High)

	off := c.Correct(model.Observation{Timestamp: at(15, 1), Raw: dec("25.0"), Unit: model.Celsius})
	assert.Nil(t, off.Uncertainty())
}

func TestCorrector_Disabled(t *testing.T) {
	c := NewCorrector(0)
	assert.False(t, c.OnBoundary(at(12, 0)))

	got := c.Correct(model.Observation{Timestamp: at(12, 0), Raw: dec("25"), Unit: model.Celsius})
	assert.False(t, got.PreRounded)
	assertDecimal(t, "25", got.Celsius)
}

func TestCorrector_CorrectAll(t *testing.T) {
	c := NewCorrector(5 * time.Minute)
	s := DailySeries{Observations: []model.Observation{
		{Timestamp: at(9, 51), Raw: dec("20.6"), Unit: model.Celsius},
		{Timestamp: at(9, 55), Raw: dec("21"), Unit: model.Celsius},
	}}

	got := c.CorrectAll(s)
	require.Len(t, got, 2)
	assert.Equal(t, at(9, 51), got[0].Timestamp)
	assertDecimal(t, "20.5", got[1].Celsius)
}

func TestFindExtremum(t *testing.T) {
	c := NewCorrector(5 * time.Minute)
	correct := func(ts time.Time, raw string) CorrectedObservation {
		return c.Correct(model.Observation{Timestamp: ts, Raw: dec(raw), Unit: model.Celsius})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := FindExtremum(nil)
		assert.ErrorIs(t, err, ErrNoObservations)
	})

	t.Run("settled", func(t *testing.T) {
		got, err := FindExtremum([]CorrectedObservation{
			correct(at(12, 51), "24.4"),
			correct(at(13, 51), "25.6"),
			correct(at(14, 51), "25.0"),
		})
		require.NoError(t, err)
		assertDecimal(t, "25.6", got.Max.Celsius)
		assert.Equal(t, at(13, 51), got.Max.Timestamp)
		assert.Equal(t, at(14, 51), got.Latest.Timestamp)
		assert.True(t, got.Settled)
		assert.Equal(t, 78, got.Rounded()) // 78.08
	})

	t.Run("latest is max", func(t *testing.T) {
		got, err := FindExtremum([]CorrectedObservation{
			correct(at(12, 51), "24.4"),
			correct(at(13, 51), "25.6"),
		})
		require.NoError(t, err)
		assert.False(t, got.Settled)
	})

	t.Run("ties keep earliest", func(t *testing.T) {
		got, err := FindExtremum([]CorrectedObservation{
			correct(at(12, 51), "25.6"),
			correct(at(13, 51), "25.6"),
			correct(at(14, 51), "22"),
		})
		require.NoError(t, err)
		assert.Equal(t, at(12, 51), got.Max.Timestamp)
	})

	t.Run("correction lowers boundary report", func(t *testing.T) {
		// 25.0 at :55 reconstructs to 24.5 and loses to 24.8 off-boundary.
		got, err := FindExtremum([]CorrectedObservation{
			correct(at(13, 55), "25.0"),
			correct(at(14, 51), "24.8"),
			correct(at(15, 51), "23.0"),
		})
		require.NoError(t, err)
		assertDecimal(t, "24.8", got.Max.Celsius)
		assert.False(t, got.Max.PreRounded)
	})
}
