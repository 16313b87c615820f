package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the temperature scale of a reading.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

func (u Unit) String() string {
	switch u {
	case Celsius:
		return "C"
	case Fahrenheit:
		return "F"
	default:
		return "?"
	}
}

// ParseUnit maps feed unit labels ("Celsius", "C", "Fahrenheit", "F") to a Unit.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, true
	case "f", "fahrenheit":
		return Fahrenheit, true
	default:
		return 0, false
	}
}

// -----------------------------------------------------------------------------
// Temperature Types
// -----------------------------------------------------------------------------

// Observation is a single station reading. Immutable once ingested.
type Observation struct {
	Timestamp time.Time       // Reported time, in the station's offset
	Raw       decimal.Decimal // Reading as reported
	Unit      Unit            // Scale of Raw
}

// -----------------------------------------------------------------------------
// Market Types
// -----------------------------------------------------------------------------

// PayoutCents is what one winning contract pays.
const PayoutCents = 100

// Side is a contract side.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Market is a read-only snapshot of a binary temperature contract.
type Market struct {
	Ticker       string    // Primary key (e.g., "KXHIGHNY-25JUN13-B81.5")
	EventTicker  string    // Parent event (e.g., "KXHIGHNY-25JUN13")
	SeriesTicker string    // Category prefix (e.g., "KXHIGHNY")
	DateToken    string    // Date segment of the ticker (e.g., "25JUN13")
	Subtitle     string    // Free-text Yes condition (e.g., "81° to 82°")
	Status       string    // Market status as reported by the venue
	YesAsk       int       // Best YES ask (cents)
	NoAsk        int       // Best NO ask (cents)
	Unpriced     bool      // NO side had no ask quote; NoAsk is meaningless
	CloseTime    time.Time // Zero if unknown
}

// SplitTicker returns the series prefix and date token of a ticker.
// ok is false when the ticker has fewer than three hyphen-separated parts.
func SplitTicker(ticker string) (series, dateToken string, ok bool) {
	parts := strings.Split(ticker, "-")
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ValidPrice reports whether a price in cents is inside the venue's 0-100 range.
func ValidPrice(cents int) bool {
	return cents >= 0 && cents <= PayoutCents
}
