package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rickgao/kalshi-highs/internal/decision"
	"github.com/rickgao/kalshi-highs/internal/series"
)

const insertDecision = `
	INSERT INTO market_decisions (
		run_id, ticker, station, target_date, condition, strategy,
		max_temp_f, rounded_max_f, no_ask, no_probability, expected_value,
		action, price, reason, decided_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (run_id, ticker) DO NOTHING
`

// BatchSender is satisfied by *pgxpool.Pool.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Run identifies the scan that produced a set of decisions.
type Run struct {
	ID        uuid.UUID
	Station   string
	Date      series.Date
	Extremum  series.Extremum
	DecidedAt time.Time
}

// WriterMetrics counts journal activity.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// DecisionWriter writes decisions to market_decisions.
type DecisionWriter struct {
	db     BatchSender
	logger *slog.Logger

	mu      sync.Mutex
	metrics WriterMetrics
}

// NewDecisionWriter creates a DecisionWriter.
func NewDecisionWriter(db BatchSender, logger *slog.Logger) *DecisionWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionWriter{db: db, logger: logger}
}

// Stats returns current metrics.
func (w *DecisionWriter) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

type decisionRow struct {
	RunID         uuid.UUID
	Ticker        string
	Station       string
	TargetDate    time.Time
	Condition     string
	Strategy      string
	MaxTempF      string
	RoundedMaxF   int
	NoAsk         int
	NoProbability string
	ExpectedValue string
	Action        string
	Price         *int
	Reason        string
	DecidedAt     time.Time
}

// transform converts a decision to a row. Decimals travel as text so NUMERIC
// columns keep every digit.
func transform(run Run, d decision.Decision) decisionRow {
	row := decisionRow{
		RunID:         run.ID,
		Ticker:        d.Market.Ticker,
		Station:       run.Station,
		TargetDate:    time.Date(run.Date.Year, run.Date.Month, run.Date.Day, 0, 0, 0, 0, time.UTC),
		Condition:     d.Condition.String(),
		Strategy:      string(d.Strategy),
		MaxTempF:      run.Extremum.Max.Fahrenheit.String(),
		RoundedMaxF:   run.Extremum.Rounded(),
		NoAsk:         d.Market.NoAsk,
		NoProbability: d.NoProbability.String(),
		ExpectedValue: d.ExpectedValue.String(),
		Action:        "no_trade",
		Reason:        d.Reason,
		DecidedAt:     run.DecidedAt,
	}
	if d.Action.IsTrade() {
		row.Action = "buy_" + string(d.Action.Side)
		price := d.Action.Price
		row.Price = &price
	}
	return row
}

// Write records decisions for run in a single batch.
func (w *DecisionWriter) Write(ctx context.Context, run Run, decisions []decision.Decision) error {
	if len(decisions) == 0 {
		return nil
	}

	start := time.Now()

	rows := make([]decisionRow, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, transform(run, d))
	}

	conflicts, err := w.batchInsert(ctx, rows)
	if err != nil {
		w.mu.Lock()
		w.metrics.Errors++
		w.mu.Unlock()
		return fmt.Errorf("write decisions for run %s: %w", run.ID, err)
	}

	w.mu.Lock()
	w.metrics.Inserts += int64(len(rows) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.mu.Unlock()

	w.logger.Debug("recorded decisions",
		"run_id", run.ID,
		"count", len(rows),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
	return nil
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *DecisionWriter) batchInsert(ctx context.Context, rows []decisionRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertDecision,
			r.RunID, r.Ticker, r.Station, r.TargetDate, r.Condition, r.Strategy,
			r.MaxTempF, r.RoundedMaxF, r.NoAsk, r.NoProbability, r.ExpectedValue,
			r.Action, r.Price, r.Reason, r.DecidedAt,
		)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
