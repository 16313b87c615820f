package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultRestURL           = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultAPIRateLimit      = 10.0
	DefaultMaxPages          = 1500
	DefaultFeedURL           = "https://api.mesowest.net"
	DefaultFeedUnit          = "C"
	DefaultFeedLookback      = 72 * time.Hour
	DefaultFeedRateLimit     = 2.0
	DefaultTimezone          = "EST"
	DefaultReportingInterval = 5 * time.Minute
	DefaultStrategy          = "conservative"
	DefaultMinExpectedValue  = 1.0
	DefaultMaxAsk            = 95
	DefaultConcurrency       = 8
	DefaultSnapshotPath      = "kalshi_markets.json"
	DefaultSnapshotMode      = "write"
	DefaultSMTPPort          = 587
	DefaultLogLines          = 100
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultRunTimeout        = 2 * time.Minute
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
)

func (c *ScannerConfig) applyDefaults() {
	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RateLimit == 0 {
		c.API.RateLimit = DefaultAPIRateLimit
	}
	if c.API.MaxPages == 0 {
		c.API.MaxPages = DefaultMaxPages
	}

	// Feed defaults
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = DefaultFeedURL
	}
	if c.Feed.Unit == "" {
		c.Feed.Unit = DefaultFeedUnit
	}
	if c.Feed.Lookback == 0 {
		c.Feed.Lookback = DefaultFeedLookback
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultAPITimeout
	}
	if c.Feed.MaxRetries == 0 {
		c.Feed.MaxRetries = DefaultMaxRetries
	}
	if c.Feed.RateLimit == 0 {
		c.Feed.RateLimit = DefaultFeedRateLimit
	}

	// Station defaults
	if c.Station.Timezone == "" {
		c.Station.Timezone = DefaultTimezone
	}
	if c.Station.ReportingInterval == 0 {
		c.Station.ReportingInterval = DefaultReportingInterval
	}

	// Strategy defaults. MinExpectedValue can be 0 intentionally.
	if c.Strategy.Name == "" {
		c.Strategy.Name = DefaultStrategy
	}
	if c.Strategy.MinExpectedValue == nil {
		v := DefaultMinExpectedValue
		c.Strategy.MinExpectedValue = &v
	}
	if c.Strategy.MaxAsk == 0 {
		c.Strategy.MaxAsk = DefaultMaxAsk
	}
	if c.Strategy.Concurrency == 0 {
		c.Strategy.Concurrency = DefaultConcurrency
	}

	// Snapshot defaults
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = DefaultSnapshotPath
	}
	if c.Snapshot.Mode == "" {
		c.Snapshot.Mode = DefaultSnapshotMode
	}

	// Notify defaults
	if c.Notify.SMTP.Port == 0 {
		c.Notify.SMTP.Port = DefaultSMTPPort
	}
	if c.Notify.LogLines == 0 {
		c.Notify.LogLines = DefaultLogLines
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Poller defaults
	if c.Poller.RunTimeout == 0 {
		c.Poller.RunTimeout = DefaultRunTimeout
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
