package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-highs/internal/model"
)

var centsPerDollar = decimal.NewFromInt(100)

// DollarsToCents converts a dollar string to whole cents, rounding half up.
// "0.52" -> 52, "0.5250" -> 53. ok is false for empty or invalid input.
func DollarsToCents(dollars string) (cents int, ok bool) {
	dollars = strings.TrimSpace(dollars)
	if dollars == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(dollars)
	if err != nil {
		return 0, false
	}

	return int(d.Mul(centsPerDollar).Round(0).IntPart()), true
}

// ParseTimestamp parses an ISO 8601 timestamp. Returns the zero time for
// empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t
}

// ToModel converts an APIMarket to model.Market. The Yes condition comes
// from yes_sub_title, falling back to subtitle. A cent price that is present
// wins over its dollar string, even at 0. With neither present for the No
// side the market is marked Unpriced.
func (m *APIMarket) ToModel() model.Market {
	series, dateToken, _ := model.SplitTicker(m.Ticker)

	subtitle := m.YesSubTitle
	if subtitle == "" {
		subtitle = m.Subtitle
	}

	yesAsk, _ := quote(m.YesAsk, m.YesAskDollars)
	noAsk, noQuoted := quote(m.NoAsk, m.NoAskDollars)

	return model.Market{
		Ticker:       m.Ticker,
		EventTicker:  m.EventTicker,
		SeriesTicker: series,
		DateToken:    dateToken,
		Subtitle:     subtitle,
		Status:       m.Status,
		YesAsk:       yesAsk,
		NoAsk:        noAsk,
		Unpriced:     !noQuoted,
		CloseTime:    ParseTimestamp(m.CloseTime),
	}
}

// quote resolves one side's ask. ok is false when neither form is present.
func quote(cents *int, dollars string) (int, bool) {
	if cents != nil {
		return *cents, true
	}
	return DollarsToCents(dollars)
}
