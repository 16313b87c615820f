package api

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// APIMarket represents a market from the Kalshi API.
type APIMarket struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	YesSubTitle  string `json:"yes_sub_title"`
	NoSubTitle   string `json:"no_sub_title,omitempty"`
	Status       string `json:"status"`
	Result       string `json:"result,omitempty"`

	// Prices in cents. Asks are pointers so a missing quote stays
	// distinguishable from a 0¢ one.
	YesBid int  `json:"yes_bid"`
	YesAsk *int `json:"yes_ask,omitempty"`
	NoBid  int  `json:"no_bid"`
	NoAsk  *int `json:"no_ask,omitempty"`

	// Prices as strings (sub-penny)
	YesAskDollars string `json:"yes_ask_dollars,omitempty"`
	NoAskDollars  string `json:"no_ask_dollars,omitempty"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	CloseTime string `json:"close_time"`
}

// SingleMarketResponse from GET /markets/{ticker}
type SingleMarketResponse struct {
	Market APIMarket `json:"market"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Tickers      []string
	Status       string
}
