package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// StandardOffsets maps the supported timezone abbreviations to their fixed
// standard UTC offsets in hours. Daylight saving is ignored on purpose: the
// settlement day is defined in standard time.
var StandardOffsets = map[string]int{
	"EST": -5,
	"CST": -6,
	"MST": -7,
	"PST": -8,
}

// Validate checks that all required fields are set and values are valid.
func (c *ScannerConfig) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	if c.Station.ID == "" {
		return errors.New("station.id is required")
	}
	if c.Station.SeriesTicker == "" {
		return errors.New("station.series_ticker is required")
	}
	if _, ok := StandardOffsets[strings.ToUpper(c.Station.Timezone)]; !ok {
		return fmt.Errorf("station.timezone must be one of EST, CST, MST, PST, got %q", c.Station.Timezone)
	}
	if c.Station.ReportingInterval < 0 {
		return errors.New("station.reporting_interval must be >= 0")
	}

	unit := strings.ToUpper(c.Feed.Unit)
	if unit != "C" && unit != "F" {
		return fmt.Errorf("feed.unit must be C or F, got %q", c.Feed.Unit)
	}
	if c.Feed.Token == "" {
		return errors.New("feed.token is required")
	}
	if (c.API.KeyID == "") != (c.API.PrivateKeyPath == "") {
		return errors.New("api.key_id and api.private_key_path must be set together")
	}

	switch c.Strategy.Name {
	case "conservative", "probabilistic":
	default:
		return fmt.Errorf("strategy.name must be conservative or probabilistic, got %q", c.Strategy.Name)
	}
	if c.Strategy.MaxAsk < 1 || c.Strategy.MaxAsk > 100 {
		return fmt.Errorf("strategy.max_ask must be between 1 and 100, got %d", c.Strategy.MaxAsk)
	}
	if c.Strategy.Concurrency < 1 {
		return errors.New("strategy.concurrency must be >= 1")
	}

	switch c.Snapshot.Mode {
	case "off", "write", "read":
	default:
		return fmt.Errorf("snapshot.mode must be off, write or read, got %q", c.Snapshot.Mode)
	}

	if c.Notify.SMTP.Password != "" {
		if c.Notify.SMTP.Host == "" {
			return errors.New("notify.smtp.host is required when a password is set")
		}
		if len(c.Notify.SMTP.To) == 0 {
			return errors.New("notify.smtp.to is required when a password is set")
		}
	}

	if c.Database.Enabled {
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	}

	if c.Poller.Interval < 0 {
		return errors.New("poller.interval must be >= 0")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
