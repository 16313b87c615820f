package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/kalshi-highs/internal/condition"
	"github.com/rickgao/kalshi-highs/internal/decision"
	"github.com/rickgao/kalshi-highs/internal/metrics"
	"github.com/rickgao/kalshi-highs/internal/model"
	"github.com/rickgao/kalshi-highs/internal/notify"
	"github.com/rickgao/kalshi-highs/internal/series"
	"github.com/rickgao/kalshi-highs/internal/writer"
)

// Skip reasons.
const (
	SkipUnparseableCondition = "unparseable_condition"
	SkipInvalidPrice         = "invalid_price"
)

// TemperatureSource provides a station's raw timeseries.
type TemperatureSource interface {
	FetchSeries(ctx context.Context, stationID string, lookback time.Duration) (series.RawSeries, error)
}

// MarketSource provides the markets of the configured series.
type MarketSource interface {
	FetchMarkets(ctx context.Context) ([]model.Market, error)
}

// DecisionSink records a run's decisions.
type DecisionSink interface {
	Write(ctx context.Context, run writer.Run, decisions []decision.Decision) error
}

// Config holds scanner settings.
type Config struct {
	StationID         string
	SeriesTicker      string
	Location          *time.Location // fixed standard-time zone of the settlement day
	ReportingInterval time.Duration
	Lookback          time.Duration
	UsualTime         string // when the high is usually reached, shown in alerts
	Concurrency       int    // parallel market evaluations (default: 8)
	LogLines          int    // readings included in alerts (default: 100)
}

// Skip is a market that was not evaluated.
type Skip struct {
	Ticker string
	Reason string
	Err    error
}

// Report summarizes one run.
type Report struct {
	RunID     uuid.UUID
	Date      series.Date
	DateToken string
	Strategy  decision.StrategyName

	// Readings is the corrected series for Date.
	Readings []series.CorrectedObservation

	// Extremum is nil when no reading qualified for Date.
	Extremum *series.Extremum

	// Decisions are ordered by expected value, highest first.
	Decisions []decision.Decision
	Skipped   []Skip
	Trades    int
	Notified  bool
}

// Scanner evaluates one station's markets.
type Scanner struct {
	cfg       Config
	temps     TemperatureSource
	markets   MarketSource
	engine    *decision.Engine
	corrector *series.Corrector

	notifier notify.Notifier
	sink     DecisionSink
	metrics  *metrics.ScannerMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithNotifier sets where trade alerts go. Without one, no alert is sent.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Scanner) { s.notifier = n }
}

// WithSink sets the decision journal.
func WithSink(sink DecisionSink) Option {
	return func(s *Scanner) { s.sink = sink }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.ScannerMetrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner.
func New(cfg Config, temps TemperatureSource, markets MarketSource, engine *decision.Engine, opts ...Option) *Scanner {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.LogLines <= 0 {
		cfg.LogLines = 100
	}

	s := &Scanner{
		cfg:       cfg,
		temps:     temps,
		markets:   markets,
		engine:    engine,
		corrector: series.NewCorrector(cfg.ReportingInterval),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one scan. The returned Report is never nil, even on error.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	start := s.now()
	date := TargetDate(start, s.cfg.Location)

	report := &Report{
		RunID:     uuid.New(),
		Date:      date,
		DateToken: DateToken(date),
		Strategy:  s.engine.Strategy(),
	}
	logger := s.logger.With("run_id", report.RunID, "station", s.cfg.StationID, "date", date)

	status, err := s.run(ctx, report, logger)
	if s.metrics != nil {
		s.metrics.RecordRun(status, s.now().Sub(start).Seconds())
	}
	if err != nil {
		logger.Error("scan failed", "status", status, "error", err)
		return report, err
	}

	logger.Info("scan complete",
		"status", status,
		"evaluated", len(report.Decisions),
		"skipped", len(report.Skipped),
		"trades", report.Trades,
		"notified", report.Notified,
		"duration", s.now().Sub(start),
	)
	return report, nil
}

func (s *Scanner) run(ctx context.Context, report *Report, logger *slog.Logger) (string, error) {
	raw, err := s.temps.FetchSeries(ctx, s.cfg.StationID, s.cfg.Lookback)
	if err != nil {
		if errors.Is(err, series.ErrDataUnavailable) {
			return "data_unavailable", err
		}
		return "data_unavailable", fmt.Errorf("%w: %w", series.ErrDataUnavailable, err)
	}

	daily, err := series.Ingest(raw, report.Date, logger)
	if err != nil {
		return "data_unavailable", err
	}

	report.Readings = s.corrector.CorrectAll(daily)

	ext, err := series.FindExtremum(report.Readings)
	if errors.Is(err, series.ErrNoObservations) {
		logger.Warn("no readings for target date, skipping market evaluation")
		return "no_observations", nil
	}
	if err != nil {
		return "error", err
	}
	report.Extremum = &ext

	logger.Info("daily maximum",
		"max_f", ext.Max.Fahrenheit.StringFixed(2),
		"rounded", ext.Rounded(),
		"max_at", ext.Max.Timestamp,
		"pre_rounded", ext.Max.PreRounded,
		"latest_f", ext.Latest.Fahrenheit.StringFixed(2),
		"settled", ext.Settled,
	)
	if s.metrics != nil {
		s.metrics.SetMaximum(s.cfg.StationID, ext.Max.Fahrenheit, ext.Rounded())
	}

	all, err := s.markets.FetchMarkets(ctx)
	if err != nil {
		return "market_fetch_failed", fmt.Errorf("fetch markets: %w", err)
	}

	candidates := s.selectMarkets(all, report, logger)

	if err := s.evaluate(ctx, candidates, decision.ReadingFrom(ext), report, logger); err != nil {
		return "error", err
	}

	s.record(ctx, report, logger)
	s.alert(ctx, report, logger)

	return "ok", nil
}

type candidate struct {
	market model.Market
	cond   condition.Condition
}

// selectMarkets keeps the configured series' markets for the report date and
// parses their conditions.
func (s *Scanner) selectMarkets(all []model.Market, report *Report, logger *slog.Logger) []candidate {
	var out []candidate
	var otherDates int
	for _, m := range all {
		if m.SeriesTicker != s.cfg.SeriesTicker {
			continue
		}
		if m.DateToken != report.DateToken {
			otherDates++
			continue
		}

		cond, err := condition.Parse(m.Subtitle)
		if err != nil {
			logger.Warn("skipping market", "ticker", m.Ticker, "subtitle", m.Subtitle, "error", err)
			s.skip(report, Skip{Ticker: m.Ticker, Reason: SkipUnparseableCondition, Err: err})
			continue
		}
		if m.Unpriced {
			err := fmt.Errorf("%w: %s has no no ask", decision.ErrInvalidPrice, m.Ticker)
			logger.Warn("skipping market", "ticker", m.Ticker, "error", err)
			s.skip(report, Skip{Ticker: m.Ticker, Reason: SkipInvalidPrice, Err: err})
			continue
		}
		out = append(out, candidate{market: m, cond: cond})
	}

	logger.Debug("selected markets",
		"fetched", len(all),
		"candidates", len(out),
		"other_dates", otherDates,
	)
	return out
}

type result struct {
	decision decision.Decision
	err      error
}

// evaluate scores candidates in parallel. Results are stored by index so the
// outcome does not depend on scheduling.
func (s *Scanner) evaluate(ctx context.Context, candidates []candidate, reading decision.Reading, report *Report, logger *slog.Logger) error {
	results := make([]result, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := s.engine.Evaluate(c.market, c.cond, reading)
			results[i] = result{decision: d, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("evaluate markets: %w", err)
	}

	for i, r := range results {
		if r.err != nil {
			ticker := candidates[i].market.Ticker
			logger.Warn("skipping market", "ticker", ticker, "error", r.err)
			s.skip(report, Skip{Ticker: ticker, Reason: SkipInvalidPrice, Err: r.err})
			continue
		}

		d := r.decision
		report.Decisions = append(report.Decisions, d)
		if d.Action.IsTrade() {
			report.Trades++
		}
		if s.metrics != nil {
			action := "no_trade"
			if d.Action.IsTrade() {
				action = "trade"
			}
			s.metrics.RecordEvaluation(string(d.Strategy), action, d.ExpectedValue, d.Action.IsTrade())
		}
		logger.Debug("evaluated market",
			"ticker", d.Market.Ticker,
			"condition", d.Condition,
			"no_ask", d.Market.NoAsk,
			"no_probability", d.NoProbability.StringFixed(3),
			"ev", d.ExpectedValue.StringFixed(2),
			"action", d.Action,
			"reason", d.Reason,
		)
	}

	sort.SliceStable(report.Decisions, func(i, j int) bool {
		return report.Decisions[i].ExpectedValue.GreaterThan(report.Decisions[j].ExpectedValue)
	})
	return nil
}

func (s *Scanner) skip(report *Report, sk Skip) {
	report.Skipped = append(report.Skipped, sk)
	if s.metrics != nil {
		s.metrics.RecordSkip(sk.Reason)
	}
}

func (s *Scanner) record(ctx context.Context, report *Report, logger *slog.Logger) {
	if s.sink == nil || len(report.Decisions) == 0 {
		return
	}

	run := writer.Run{
		ID:        report.RunID,
		Station:   s.cfg.StationID,
		Date:      report.Date,
		Extremum:  *report.Extremum,
		DecidedAt: s.now(),
	}
	if err := s.sink.Write(ctx, run, report.Decisions); err != nil {
		logger.Error("failed to record decisions", "error", err)
		if s.metrics != nil {
			s.metrics.JournalFailures.Inc()
		}
	}
}

func (s *Scanner) alert(ctx context.Context, report *Report, logger *slog.Logger) {
	if s.notifier == nil || report.Trades == 0 {
		return
	}

	subject, body := ComposeAlert(s.cfg, report)
	if err := s.notifier.Notify(ctx, subject, body); err != nil {
		logger.Error("failed to send alert", "subject", subject, "error", err)
		if s.metrics != nil {
			s.metrics.NotifyFailures.Inc()
		}
		return
	}
	report.Notified = true
}
