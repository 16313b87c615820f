package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "kalshi_highs"

// ScannerMetrics collects scanner metrics on a private registry.
type ScannerMetrics struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	MarketsEvaluated *prometheus.CounterVec
	MarketsSkipped   *prometheus.CounterVec
	TradeSignals     *prometheus.CounterVec
	ExpectedValue    *prometheus.HistogramVec
	MaxTemperature   *prometheus.GaugeVec
	RoundedMax       *prometheus.GaugeVec
	NotifyFailures   prometheus.Counter
	JournalFailures  prometheus.Counter
}

// New creates and registers the scanner metrics.
func New() *ScannerMetrics {
	m := &ScannerMetrics{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Scan runs by outcome",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a scan run",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
		),
		MarketsEvaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "markets_evaluated_total",
				Help:      "Markets that reached the decision engine, by action",
			},
			[]string{"action"},
		),
		MarketsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "markets_skipped_total",
				Help:      "Markets not evaluated, by reason",
			},
			[]string{"reason"},
		),
		TradeSignals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trade_signals_total",
				Help:      "Trade recommendations, by strategy",
			},
			[]string{"strategy"},
		),
		ExpectedValue: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expected_value_cents",
				Help:      "Expected value per contract of evaluated markets",
				Buckets:   []float64{-1, 0, 1, 2, 5, 10, 20, 40, 60, 80, 100},
			},
			[]string{"strategy"},
		),
		MaxTemperature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "max_temperature_fahrenheit",
				Help:      "Day maximum point estimate",
			},
			[]string{"station"},
		),
		RoundedMax: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rounded_max_fahrenheit",
				Help:      "Day maximum after official rounding",
			},
			[]string{"station"},
		),
		NotifyFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_failures_total",
				Help:      "Alerts that could not be delivered",
			},
		),
		JournalFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "journal_failures_total",
				Help:      "Runs whose decisions could not be recorded",
			},
		),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.MarketsEvaluated,
		m.MarketsSkipped,
		m.TradeSignals,
		m.ExpectedValue,
		m.MaxTemperature,
		m.RoundedMax,
		m.NotifyFailures,
		m.JournalFailures,
	)

	return m
}

// Registry returns the underlying registry.
func (m *ScannerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *ScannerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records a finished run.
func (m *ScannerMetrics) RecordRun(status string, durationSec float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSec)
}

// RecordEvaluation records one decision.
func (m *ScannerMetrics) RecordEvaluation(strategy, action string, ev decimal.Decimal, trade bool) {
	m.MarketsEvaluated.WithLabelValues(action).Inc()
	m.ExpectedValue.WithLabelValues(strategy).Observe(DecimalToFloat64(ev))
	if trade {
		m.TradeSignals.WithLabelValues(strategy).Inc()
	}
}

// RecordSkip records a market that was not evaluated.
func (m *ScannerMetrics) RecordSkip(reason string) {
	m.MarketsSkipped.WithLabelValues(reason).Inc()
}

// SetMaximum records the day maximum for a station.
func (m *ScannerMetrics) SetMaximum(station string, pointF decimal.Decimal, rounded int) {
	m.MaxTemperature.WithLabelValues(station).Set(DecimalToFloat64(pointF))
	m.RoundedMax.WithLabelValues(station).Set(float64(rounded))
}

// DecimalToFloat64 converts a decimal for export.
func DecimalToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
