package api

import (
	"encoding/json"
	"testing"
	"time"
)

func cents(v int) *int { return &v }

func TestDollarsToCents(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"0.52", 52, true},
		{"0.5250", 53, true},
		{"0.05", 5, true},
		{" 1.00 ", 100, true},
		{"0", 0, true},
		{"", 0, false},
		{"invalid", 0, false},
	}

	for _, tt := range tests {
		got, ok := DollarsToCents(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("DollarsToCents(%q) = %d, %v, want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, input := range []string{"", "invalid", "2024/01/15"} {
		if got := ParseTimestamp(input); !got.IsZero() {
			t.Errorf("ParseTimestamp(%q) = %v, want zero", input, got)
		}
	}

	got := ParseTimestamp("2024-01-15T12:30:45Z")
	want := time.Date(2024, 1, 15, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp(RFC3339) = %v, want %v", got, want)
	}

	got = ParseTimestamp("2024-01-15T12:30:45")
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp(no zone) = %v, want %v", got, want)
	}
}

func TestAPIMarketToModel(t *testing.T) {
	m := APIMarket{
		Ticker:      "KXHIGHNY-25JUN13-B81.5",
		EventTicker: "KXHIGHNY-25JUN13",
		Title:       "Highest temperature in NYC on Jun 13, 2025?",
		Subtitle:    "81° to 82°",
		YesSubTitle: "81° to 82°",
		Status:      "active",
		YesAsk:      cents(12),
		NoAsk:       cents(90),
		CloseTime:   "2025-06-14T03:59:00Z",
	}

	got := m.ToModel()

	if got.SeriesTicker != "KXHIGHNY" {
		t.Errorf("SeriesTicker = %q, want %q", got.SeriesTicker, "KXHIGHNY")
	}
	if got.DateToken != "25JUN13" {
		t.Errorf("DateToken = %q, want %q", got.DateToken, "25JUN13")
	}
	if got.Subtitle != "81° to 82°" {
		t.Errorf("Subtitle = %q", got.Subtitle)
	}
	if got.YesAsk != 12 || got.NoAsk != 90 {
		t.Errorf("asks = %d/%d, want 12/90", got.YesAsk, got.NoAsk)
	}
	if got.CloseTime.IsZero() {
		t.Error("CloseTime should be set")
	}
}

func TestAPIMarketToModelFallbacks(t *testing.T) {
	m := APIMarket{
		Ticker:        "KXHIGHNY-25JUN13-T83",
		Subtitle:      "83° or above",
		NoAskDollars:  "0.97",
		YesAskDollars: "0.04",
	}

	got := m.ToModel()

	if got.Subtitle != "83° or above" {
		t.Errorf("Subtitle = %q, want subtitle fallback", got.Subtitle)
	}
	if got.NoAsk != 97 {
		t.Errorf("NoAsk = %d, want 97", got.NoAsk)
	}
	if got.YesAsk != 4 {
		t.Errorf("YesAsk = %d, want 4", got.YesAsk)
	}

	bad := APIMarket{Ticker: "MALFORMED"}
	if got := bad.ToModel(); got.SeriesTicker != "" || got.DateToken != "" {
		t.Errorf("malformed ticker split = %q/%q, want empty", got.SeriesTicker, got.DateToken)
	}
}

func TestAPIMarketToModelMissingNoAsk(t *testing.T) {
	var m APIMarket
	if err := json.Unmarshal([]byte(`{"ticker":"KXHIGHNY-25JUN13-B75.5","yes_sub_title":"75° to 76°"}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := m.ToModel()
	if !got.Unpriced {
		t.Errorf("Unpriced = false for a market with no no_ask, NoAsk = %d", got.NoAsk)
	}

	m.NoAskDollars = "0.61"
	if got := m.ToModel(); got.Unpriced || got.NoAsk != 61 {
		t.Errorf("with dollars: Unpriced = %v, NoAsk = %d, want false, 61", got.Unpriced, got.NoAsk)
	}
}

func TestAPIMarketToModelZeroCentQuote(t *testing.T) {
	var m APIMarket
	if err := json.Unmarshal([]byte(`{"ticker":"KXHIGHNY-25JUN13-T83","no_ask":0,"no_ask_dollars":"0.40"}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := m.ToModel()
	if got.Unpriced || got.NoAsk != 0 {
		t.Errorf("Unpriced = %v, NoAsk = %d, want a quoted 0", got.Unpriced, got.NoAsk)
	}
}
