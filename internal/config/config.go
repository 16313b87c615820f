package config

import (
	"strings"
	"time"
)

// ScannerConfig is the root configuration for the scanner.
type ScannerConfig struct {
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Feed     FeedConfig     `yaml:"feed"`
	Station  StationConfig  `yaml:"station"`
	Strategy StrategyConfig `yaml:"strategy"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Notify   NotifyConfig   `yaml:"notify"`
	Database DatabaseConfig `yaml:"database"`
	Poller   PollerConfig   `yaml:"poller"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	APIKey     string        `yaml:"api_key"`
	// KeyID and PrivateKeyPath enable RSA-PSS signed requests.
	KeyID          string `yaml:"key_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RateLimit  float64       `yaml:"rate_limit"` // requests per second
	MaxPages   int           `yaml:"max_pages"`
}

// FeedConfig holds temperature feed settings.
type FeedConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Token      string        `yaml:"token"`
	Unit       string        `yaml:"unit"` // C or F
	Lookback   time.Duration `yaml:"lookback"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RateLimit  float64       `yaml:"rate_limit"`
}

// StationConfig names the station and the market series it settles.
type StationConfig struct {
	ID                string        `yaml:"id"`
	SeriesTicker      string        `yaml:"series_ticker"`
	Timezone          string        `yaml:"timezone"` // EST, CST, MST or PST
	ReportingInterval time.Duration `yaml:"reporting_interval"`
	UsualTime         string        `yaml:"usual_time"` // when the high is usually reached, for alerts
}

// StrategyConfig selects the decision strategy.
type StrategyConfig struct {
	Name string `yaml:"name"` // conservative or probabilistic

	// MinExpectedValue is in cents. Nil means the default; zero is allowed.
	MinExpectedValue *float64 `yaml:"min_expected_value"`

	MaxAsk      int `yaml:"max_ask"`     // cents, exclusive
	Concurrency int `yaml:"concurrency"` // parallel market evaluations
}

// SnapshotConfig controls the market snapshot file.
type SnapshotConfig struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode"` // off, write, read
}

// NotifyConfig holds alert transport settings. With no SMTP password and no
// Slack webhook, alerts are logged.
type NotifyConfig struct {
	SMTP  SMTPConfig  `yaml:"smtp"`
	Slack SlackConfig `yaml:"slack"`
	// LogLines is how many trailing temperature readings an alert includes.
	LogLines int `yaml:"log_lines"`
}

// SMTPConfig holds mail settings.
type SMTPConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// SlackConfig holds incoming-webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Channel    string `yaml:"channel"`
}

// DatabaseConfig holds the optional decision journal connection.
type DatabaseConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PollerConfig controls repeated runs. A zero interval runs once.
type PollerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	RunTimeout time.Duration `yaml:"run_timeout"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Location returns the station's fixed standard-time zone.
func (s StationConfig) Location() *time.Location {
	abbr := strings.ToUpper(s.Timezone)
	return time.FixedZone(abbr, StandardOffsets[abbr]*3600)
}
